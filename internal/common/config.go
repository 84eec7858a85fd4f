package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML values like "60s" decode directly.
// go-toml/v2 has no native string-to-duration decoding; the wrapper's
// TextUnmarshaler hook is how duration fields reach the config file.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ScraperConfig contains marketplace scraping configuration
type ScraperConfig struct {
	Source          string        `toml:"source"`            // Origin marketplace tag stored on listings
	UserAgent       string        `toml:"user_agent"`        // Browser user agent string
	Headless        bool          `toml:"headless"`          // Run Chrome headless
	DisableGPU      bool          `toml:"disable_gpu"`       // Disable GPU rendering
	NoSandbox       bool          `toml:"no_sandbox"`        // Disable Chrome sandbox (required in most containers)
	BrowserPoolSize int           `toml:"browser_pool_size"` // Number of pooled browser contexts
	ListTimeout     Duration `toml:"list_timeout"`      // Render timeout for category pages, e.g. "60s"
	DetailTimeout   Duration `toml:"detail_timeout"`    // Render timeout for listing pages
	SettleDelay     Duration `toml:"settle_delay"`      // Extra wait after network idle for late-loading content
	MaxCandidates   int      `toml:"max_candidates"`    // Cap on candidates processed per batch (0 = unlimited)
}

// SchedulerConfig contains cron-driven batch scheduling configuration
type SchedulerConfig struct {
	Enabled bool                  `toml:"enabled"`
	Jobs    []ScheduleEntryConfig `toml:"jobs"`
}

// ScheduleEntryConfig pairs a cron expression with a category URL to ingest
type ScheduleEntryConfig struct {
	Schedule string `toml:"schedule"` // Cron expression, e.g. "0 */6 * * *"
	URL      string `toml:"url"`      // Category page URL
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key (or GEMINI_API_KEY / GOOGLE_API_KEY)
	Model       string  `toml:"model"`       // Model for analysis calls (default: "gemini-3-flash-preview")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between calls (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0 for deterministic analysis)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (or ANTHROPIC_API_KEY)
	Model       string  `toml:"model"`       // Model for analysis calls (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between calls (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for AI providers
type LLMConfig struct {
	PreferredProvider LLMProvider `toml:"preferred_provider"` // Provider tried first when both keys are configured (default: "claude")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in clmonetizer.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Scraper: ScraperConfig{
			Source:          "craigslist",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:        true,
			DisableGPU:      true,
			NoSandbox:       false,
			BrowserPoolSize: 2,
			ListTimeout:     Duration(60 * time.Second),
			DetailTimeout:   Duration(30 * time.Second),
			SettleDelay:     Duration(2 * time.Second),
			MaxCandidates:   0,
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			RateLimit:   "4s",
			Temperature: 0,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			RateLimit:   "1s",
			Temperature: 0,
		},
		LLM: LLMConfig{
			PreferredProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path skips the file stage and applies env overrides to defaults.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CLM_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CLM_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CLM_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("CLM_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("CLM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CLM_LOG_OUTPUT"); output != "" {
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

	// Scraper configuration
	if userAgent := os.Getenv("CLM_SCRAPER_USER_AGENT"); userAgent != "" {
		config.Scraper.UserAgent = userAgent
	}
	if headless := os.Getenv("CLM_SCRAPER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Scraper.Headless = h
		}
	}
	if noSandbox := os.Getenv("CLM_SCRAPER_NO_SANDBOX"); noSandbox != "" {
		if ns, err := strconv.ParseBool(noSandbox); err == nil {
			config.Scraper.NoSandbox = ns
		}
	}
	if poolSize := os.Getenv("CLM_SCRAPER_BROWSER_POOL_SIZE"); poolSize != "" {
		if ps, err := strconv.Atoi(poolSize); err == nil {
			config.Scraper.BrowserPoolSize = ps
		}
	}
	if listTimeout := os.Getenv("CLM_SCRAPER_LIST_TIMEOUT"); listTimeout != "" {
		if lt, err := time.ParseDuration(listTimeout); err == nil {
			config.Scraper.ListTimeout = Duration(lt)
		}
	}
	if detailTimeout := os.Getenv("CLM_SCRAPER_DETAIL_TIMEOUT"); detailTimeout != "" {
		if dt, err := time.ParseDuration(detailTimeout); err == nil {
			config.Scraper.DetailTimeout = Duration(dt)
		}
	}
	if settleDelay := os.Getenv("CLM_SCRAPER_SETTLE_DELAY"); settleDelay != "" {
		if sd, err := time.ParseDuration(settleDelay); err == nil {
			config.Scraper.SettleDelay = Duration(sd)
		}
	}

	// AI provider keys. ANTHROPIC_API_KEY / GEMINI_API_KEY / GOOGLE_API_KEY are
	// the conventional names the provider SDKs document, so honor them as-is.
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if provider := os.Getenv("CLM_LLM_PREFERRED_PROVIDER"); provider != "" {
		config.LLM.PreferredProvider = LLMProvider(strings.ToLower(provider))
	}
}
