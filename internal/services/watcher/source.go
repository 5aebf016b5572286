// Package watcher turns clipboard activity into analysis requests. It polls
// the clipboard, extracts ticker symbols from changed samples, debounces
// them and feeds them to the analyzer through a single-flight queue.
package watcher

import (
	"context"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
)

// ClipboardSource reads the system clipboard.
type ClipboardSource struct{}

func NewClipboardSource() *ClipboardSource {
	return &ClipboardSource{}
}

func (s *ClipboardSource) ReadCurrentSample() (string, error) {
	return clipboard.ReadAll()
}

// SelectionSource reads the X11 primary selection, the "selected but not
// yet copied" text. Only available where xclip is installed; NewSelectionSource
// returns a nil interface elsewhere and the watcher skips the selection read.
type SelectionSource struct {
	xclipPath string
}

// NewSelectionSource returns interfaces.SampleSource rather than
// *SelectionSource so that callers comparing the result against nil get a
// true nil interface when xclip is absent.
func NewSelectionSource() interfaces.SampleSource {
	path, err := exec.LookPath("xclip")
	if err != nil {
		return nil
	}
	return &SelectionSource{xclipPath: path}
}

func (s *SelectionSource) ReadCurrentSample() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, s.xclipPath, "-o", "-selection", "primary").Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

var (
	_ interfaces.SampleSource = (*ClipboardSource)(nil)
	_ interfaces.SampleSource = (*SelectionSource)(nil)
)
