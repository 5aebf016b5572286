package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	News        NewsConfig      `toml:"news"`
	Cache       CacheConfig     `toml:"cache"`
	Summary     SummaryConfig   `toml:"summary"`
	Claude      ClaudeConfig    `toml:"claude"`
	Sentiment   SentimentConfig `toml:"sentiment"`
	Watcher     WatcherConfig   `toml:"watcher"`
	History     HistoryConfig   `toml:"history"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path     string `toml:"path"`      // Database directory path (ignored when in_memory)
	InMemory bool   `toml:"in_memory"` // Run Badger without persistence (tests, throwaway runs)
}

// NewsConfig contains news retrieval configuration.
// FeedURLTemplate and PageURLTemplate receive the ticker via %s.
type NewsConfig struct {
	FeedURLTemplate string   `toml:"feed_url_template" validate:"required,contains=%s"`
	PageURLTemplate string   `toml:"page_url_template" validate:"required,contains=%s"`
	RequestTimeout  Duration `toml:"request_timeout"`
	MaxArticles     int      `toml:"max_articles" validate:"gte=1"`
	RateLimit       int      `toml:"rate_limit" validate:"gte=1"` // requests per second
	UserAgent       string   `toml:"user_agent"`
}

type CacheConfig struct {
	TTL           Duration `toml:"ttl"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// SummaryConfig selects the summarization strategy.
type SummaryConfig struct {
	Provider      string `toml:"provider" validate:"oneof=fast claude"` // "fast" (default) or "claude"
	MinInputChars int    `toml:"min_input_chars"`                       // below this the AI path falls back to fast
	MaxInputChars int    `toml:"max_input_chars"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"` // User must provide API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// SentimentConfig configures the external classifier process boundary.
type SentimentConfig struct {
	PythonBin           string   `toml:"python_bin"`
	ScriptPath          string   `toml:"script_path"`
	RequestTimeout      Duration `toml:"request_timeout"`
	TrainTimeout        Duration `toml:"train_timeout"`
	MaxDescriptionChars int      `toml:"max_description_chars"`
}

type WatcherConfig struct {
	Enabled        bool     `toml:"enabled"`
	PollInterval   Duration `toml:"poll_interval"`
	SelectionProbe bool     `toml:"selection_probe"` // X11 primary-selection probe (platforms that support it)
	Debounce       Duration `toml:"debounce"`
	QueueDelay     Duration `toml:"queue_delay"` // delay between queue drains
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"` // default page size for the history endpoint
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the configuration defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8174,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:     "./data/tickerpulse",
				InMemory: false,
			},
		},
		News: NewsConfig{
			FeedURLTemplate: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
			PageURLTemplate: "https://finance.yahoo.com/quote/%s/news",
			RequestTimeout:  Duration(5 * time.Second),
			MaxArticles:     10,
			RateLimit:       5,
			UserAgent:       "Mozilla/5.0 (compatible; tickerpulse/1.0)",
		},
		Cache: CacheConfig{
			TTL:           Duration(5 * time.Minute),
			SweepInterval: Duration(60 * time.Second),
		},
		Summary: SummaryConfig{
			Provider:      "fast",
			MinInputChars: 60,
			MaxInputChars: 2000,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   300,
			Timeout:     "30s",
			Temperature: 0.3,
		},
		Sentiment: SentimentConfig{
			PythonBin:           "python3",
			ScriptPath:          "./sentiment_analyzer.py",
			RequestTimeout:      Duration(15 * time.Second),
			TrainTimeout:        Duration(2 * time.Minute),
			MaxDescriptionChars: 200,
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			PollInterval:   Duration(500 * time.Millisecond),
			SelectionProbe: false,
			Debounce:       Duration(2 * time.Second),
			QueueDelay:     Duration(1500 * time.Millisecond),
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TICKERPULSE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("TICKERPULSE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TICKERPULSE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("TICKERPULSE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if provider := os.Getenv("TICKERPULSE_SUMMARY_PROVIDER"); provider != "" {
		config.Summary.Provider = provider
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = apiKey
	}

	if bin := os.Getenv("TICKERPULSE_SENTIMENT_PYTHON"); bin != "" {
		config.Sentiment.PythonBin = bin
	}
	if script := os.Getenv("TICKERPULSE_SENTIMENT_SCRIPT"); script != "" {
		config.Sentiment.ScriptPath = script
	}

	if watcher := os.Getenv("TICKERPULSE_WATCHER_ENABLED"); watcher != "" {
		if b, err := strconv.ParseBool(watcher); err == nil {
			config.Watcher.Enabled = b
		}
	}

	if level := os.Getenv("TICKERPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TICKERPULSE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Cache.TTL.Std() <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.SweepInterval.Std() < time.Second {
		return fmt.Errorf("cache.sweep_interval must be at least 1s")
	}
	if c.News.RequestTimeout.Std() <= 0 {
		return fmt.Errorf("news.request_timeout must be positive")
	}
	if c.Summary.Provider == "claude" && c.Claude.APIKey == "" {
		return fmt.Errorf("claude.api_key is required when summary.provider is claude")
	}
	if _, err := time.ParseDuration(c.Claude.Timeout); err != nil {
		return fmt.Errorf("invalid claude.timeout %q: %w", c.Claude.Timeout, err)
	}
	if c.Watcher.Enabled {
		if c.Watcher.PollInterval.Std() < 100*time.Millisecond {
			return fmt.Errorf("watcher.poll_interval must be at least 100ms")
		}
		if c.Watcher.Debounce < c.Watcher.PollInterval {
			return fmt.Errorf("watcher.debounce must not be shorter than watcher.poll_interval")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}
