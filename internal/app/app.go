// Package app wires configuration, storage, services and handlers into one
// container shared by the server and the command entrypoint.
package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/handlers"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/services/analyzer"
	"github.com/ternarybob/tickerpulse/internal/services/cache"
	"github.com/ternarybob/tickerpulse/internal/services/news"
	"github.com/ternarybob/tickerpulse/internal/services/sentiment"
	"github.com/ternarybob/tickerpulse/internal/services/summarizer"
	"github.com/ternarybob/tickerpulse/internal/services/watcher"
	badgerstore "github.com/ternarybob/tickerpulse/internal/storage/badger"
)

// App holds the wired application components.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	BadgerDB  *badgerstore.BadgerDB
	Cache     interfaces.ResultCache
	News      interfaces.NewsSource
	Summary   interfaces.Summarizer
	Sentiment interfaces.SentimentService
	History   interfaces.HistoryStorage
	Analyzer  interfaces.Analyzer
	Watcher   *watcher.Watcher

	AnalyzeHandler *handlers.AnalyzeHandler
	NewsHandler    *handlers.NewsHandler
	StatusHandler  *handlers.StatusHandler
	HistoryHandler *handlers.HistoryHandler

	scheduler *cron.Cron
	cancel    context.CancelFunc
}

// New builds the application container from configuration. Services are
// constructed leaves first so each dependency exists before its consumer.
func New(config *common.Config) (*App, error) {
	logger := common.GetLogger()

	a := &App{
		Config: config,
		Logger: logger,
	}

	badgerDB, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	a.BadgerDB = badgerDB

	a.Cache = cache.NewService(badgerDB.DB(), config.Cache.TTL.Std(), logger)
	a.News = news.NewService(config.News, logger)

	summary, err := newSummarizer(config, logger)
	if err != nil {
		badgerDB.Close()
		return nil, err
	}
	a.Summary = summary

	classifier := sentiment.NewProcessClassifier(config.Sentiment, logger)
	a.Sentiment = sentiment.NewService(classifier, config.Sentiment, logger)

	if config.History.Enabled {
		a.History = badgerstore.NewHistoryStorage(badgerDB, logger)
	}

	a.Analyzer = analyzer.NewService(a.News, a.Summary, a.Sentiment, a.Cache, a.History, logger)

	if config.Watcher.Enabled {
		a.Watcher = watcher.New(
			watcher.NewClipboardSource(),
			watcher.NewSelectionSource(),
			a.Analyzer,
			config.Watcher,
			logger,
		)
	}

	a.AnalyzeHandler = handlers.NewAnalyzeHandler(a.Analyzer, logger)
	a.NewsHandler = handlers.NewNewsHandler(a.News, logger)
	a.StatusHandler = handlers.NewStatusHandler(logger)
	if a.History != nil {
		a.HistoryHandler = handlers.NewHistoryHandler(a.History, config.History.Limit, logger)
	}

	a.scheduler = cron.New()
	sweepSpec := fmt.Sprintf("@every %s", config.Cache.SweepInterval)
	if _, err := a.scheduler.AddFunc(sweepSpec, a.sweepCache); err != nil {
		badgerDB.Close()
		return nil, fmt.Errorf("schedule cache sweep: %w", err)
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("watcher", config.Watcher.Enabled).
		Str("summary_provider", config.Summary.Provider).
		Msg("Application initialized")

	return a, nil
}

func newSummarizer(config *common.Config, logger arbor.ILogger) (interfaces.Summarizer, error) {
	switch config.Summary.Provider {
	case "claude":
		summary, err := summarizer.NewClaudeSummarizer(config.Summary, config.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("init claude summarizer: %w", err)
		}
		return summary, nil
	default:
		return summarizer.NewFastSummarizer(logger), nil
	}
}

// Start launches the background components: the cache sweep schedule and,
// when enabled, the clipboard watcher.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.scheduler.Start()

	if a.Watcher != nil {
		a.Watcher.Start(ctx)
	}
}

func (a *App) sweepCache() {
	if removed := a.Cache.Sweep(); removed > 0 {
		a.Logger.Debug().Int("removed", removed).Msg("Cache sweep removed expired entries")
	}
}

// Close stops background components and releases storage.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.Watcher != nil {
		a.Watcher.Stop()
	}

	if a.BadgerDB != nil {
		if err := a.BadgerDB.Close(); err != nil {
			return fmt.Errorf("close badger store: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
