package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

const promptTitleCount = 5

const systemPrompt = "You summarize stock market news. Respond with a single short paragraph of two to three sentences. Do not use bullet points or preamble."

// textCompleter is the slice of the Claude API the summarizer needs.
// Substituted in tests.
type textCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClaudeSummarizer requests an abstractive summary from the Anthropic API
// and falls back to the fast summary on any failure. Summarize never
// returns an error to its caller.
type ClaudeSummarizer struct {
	config    common.SummaryConfig
	completer textCompleter
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewClaudeSummarizer creates the Claude-backed summarizer. The timeout in
// claudeConfig must already be validated by config loading.
func NewClaudeSummarizer(config common.SummaryConfig, claudeConfig common.ClaudeConfig, logger arbor.ILogger) (*ClaudeSummarizer, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required for the claude summary provider (set ANTHROPIC_API_KEY or claude.api_key)")
	}

	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout '%s': %w", claudeConfig.Timeout, err)
	}

	completer := &anthropicCompleter{
		client:      anthropic.NewClient(option.WithAPIKey(claudeConfig.APIKey)),
		model:       claudeConfig.Model,
		maxTokens:   claudeConfig.MaxTokens,
		temperature: claudeConfig.Temperature,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Int("max_tokens", claudeConfig.MaxTokens).
		Dur("timeout", timeout).
		Msg("Claude summarizer initialized")

	return &ClaudeSummarizer{
		config:    config,
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Summarize builds a numbered-headline prompt and requests an abstractive
// summary. Inputs below the minimum length skip the API call entirely.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, articles []models.Article) string {
	if len(articles) == 0 {
		return noNewsMessage
	}

	prompt := buildPrompt(articles)
	promptChars := utf8.RuneCountInString(prompt)
	if promptChars < s.config.MinInputChars {
		s.logger.Debug().
			Int("prompt_chars", promptChars).
			Int("min_chars", s.config.MinInputChars).
			Msg("Prompt below minimum length, using fast summary")
		return fastSummary(articles)
	}
	if promptChars > s.config.MaxInputChars {
		runes := []rune(prompt)
		prompt = string(runes[:s.config.MaxInputChars])
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Claude summary failed, using fast summary")
		fallback := fastSummary(articles)
		if hint := operatorHint(err); hint != "" {
			fallback += " (" + hint + ")"
		}
		return fallback
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		s.logger.Warn().Msg("Claude returned empty summary, using fast summary")
		return fastSummary(articles)
	}
	return summary
}

func buildPrompt(articles []models.Article) string {
	count := len(articles)
	if count > promptTitleCount {
		count = promptTitleCount
	}

	var b strings.Builder
	b.WriteString("Summarize the following stock news headlines:\n")
	for i, a := range articles[:count] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
	}
	return b.String()
}

// operatorHint maps auth and rate-limit shaped failures to a short note an
// operator can act on. Other failures get no annotation.
func operatorHint(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "authentication") || strings.Contains(msg, "api key"):
		return "summary service rejected credentials, check ANTHROPIC_API_KEY"
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return "summary service rate limit reached, using headline summary"
	}
	return ""
}

// anthropicCompleter is the production textCompleter.
type anthropicCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api call failed: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("claude response contained no text blocks")
	}
	return b.String(), nil
}

var _ interfaces.Summarizer = (*ClaudeSummarizer)(nil)
