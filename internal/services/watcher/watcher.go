package watcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
)

const queueCapacity = 16

// Watcher polls one or two sample sources for ticker-shaped text and
// dispatches detected tickers to the analyzer. Dispatches are debounced and
// serialized: at most one analysis runs at a time, later detections wait in
// FIFO order with a drain delay between them.
type Watcher struct {
	clipboard interfaces.SampleSource
	selection interfaces.SampleSource
	analyzer  interfaces.Analyzer
	config    common.WatcherConfig
	logger    arbor.ILogger

	// now is replaced in tests.
	now func() time.Time

	mu            sync.Mutex
	lastSample    string
	lastProcessed string
	lastDispatch  time.Time

	queue chan string
	stop  chan struct{}
	wg    sync.WaitGroup
}

// New creates a watcher. selection may be nil when the platform has no
// primary-selection probe.
func New(clipboard, selection interfaces.SampleSource, analyzer interfaces.Analyzer, config common.WatcherConfig, logger arbor.ILogger) *Watcher {
	return &Watcher{
		clipboard: clipboard,
		selection: selection,
		analyzer:  analyzer,
		config:    config,
		logger:    logger,
		now:       time.Now,
		queue:     make(chan string, queueCapacity),
		stop:      make(chan struct{}),
	}
}

// Start launches the poll loops and the queue drain. Returns immediately.
// Whatever is on the clipboard at startup is treated as already seen, only
// subsequent changes dispatch.
func (w *Watcher) Start(ctx context.Context) {
	if sample, err := w.clipboard.ReadCurrentSample(); err == nil {
		w.mu.Lock()
		w.lastSample = strings.TrimSpace(sample)
		w.mu.Unlock()
	}

	w.wg.Add(1)
	go w.pollLoop(ctx, w.clipboard, "clipboard")

	if w.config.SelectionProbe && w.selection != nil {
		w.wg.Add(1)
		go w.pollLoop(ctx, w.selection, "selection")
	}

	w.wg.Add(1)
	go w.drainLoop(ctx)

	w.logger.Info().
		Dur("poll_interval", w.config.PollInterval.Std()).
		Dur("debounce", w.config.Debounce.Std()).
		Bool("selection_probe", w.config.SelectionProbe && w.selection != nil).
		Msg("Clipboard watcher started")
}

// Stop terminates the loops and waits for them to exit. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Watcher) pollLoop(ctx context.Context, source interfaces.SampleSource, name string) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := source.ReadCurrentSample()
			if err != nil {
				w.logger.Debug().Err(err).Str("source", name).Msg("Sample read failed")
				continue
			}
			w.handleSample(sample)
		}
	}
}

// handleSample applies the change-detection and debounce rules to one
// sample and enqueues the extracted ticker when they pass.
func (w *Watcher) handleSample(sample string) {
	trimmed := strings.TrimSpace(sample)

	w.mu.Lock()
	defer w.mu.Unlock()

	if trimmed == w.lastSample {
		return
	}
	w.lastSample = trimmed

	symbol := common.FirstTicker(trimmed)
	if symbol == "" {
		return
	}

	now := w.now()
	if !w.lastDispatch.IsZero() && now.Sub(w.lastDispatch) < w.config.Debounce.Std() {
		return
	}
	if symbol == w.lastProcessed {
		return
	}

	select {
	case w.queue <- symbol:
		w.lastDispatch = now
		w.logger.Debug().Str("ticker", symbol).Msg("Ticker detected on clipboard")
	default:
		w.logger.Warn().Str("ticker", symbol).Msg("Watcher queue full, dropping ticker")
	}
}

// drainLoop serializes analyses: one at a time, in arrival order, with a
// delay between drains.
func (w *Watcher) drainLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case symbol := <-w.queue:
			w.process(ctx, symbol)

			select {
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			case <-time.After(w.config.QueueDelay.Std()):
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, symbol string) {
	if _, err := w.analyzer.Analyze(ctx, symbol); err != nil {
		w.logger.Warn().Err(err).Str("ticker", symbol).Msg("Clipboard-triggered analysis failed")
	}

	w.mu.Lock()
	w.lastProcessed = symbol
	w.mu.Unlock()
}
