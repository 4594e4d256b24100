package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

// Config holds the entire application configuration.
type Config struct {
	Logger       LoggerConfig       `mapstructure:"logger" yaml:"logger"`
	Browser      BrowserConfig      `mapstructure:"browser" yaml:"browser"`
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Scraper      ScraperConfig      `mapstructure:"scraper" yaml:"scraper"`
	Filler       FillerConfig       `mapstructure:"filler" yaml:"filler"`
	GhostWriter  GhostWriterConfig  `mapstructure:"ghost_writer" yaml:"ghost_writer"`
	Store        StoreConfig        `mapstructure:"store" yaml:"store"`
	Persistence  PersistenceConfig  `mapstructure:"persistence" yaml:"persistence"`
	ControlPlane ControlPlaneConfig `mapstructure:"control_plane" yaml:"control_plane"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser session.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Args     []string `mapstructure:"args" yaml:"args"`
	// ProfileDir is the root under which per-site persistent user-data
	// directories are created so cookies and local storage survive runs.
	ProfileDir        string        `mapstructure:"profile_dir" yaml:"profile_dir"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// LLMProvider identifies the supported chat-completion backends.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
)

// LLMConfig defines the configuration for the chat-completion client.
type LLMConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// RequestsPerMinute caps outbound LLM traffic. Zero disables limiting.
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ScraperConfig tunes how page HTML is acquired and optimized before it is
// handed to the LLM for form analysis.
type ScraperConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries      int           `mapstructure:"retries" yaml:"retries"`
	Optimization bool          `mapstructure:"optimization" yaml:"optimization"`
	// MaxHTMLBytes is the ceiling applied when truncating optimized HTML.
	MaxHTMLBytes int `mapstructure:"max_html_bytes" yaml:"max_html_bytes"`
}

// FillerConfig configures the data generation pipeline.
type FillerConfig struct {
	Prompt  string        `mapstructure:"prompt" yaml:"prompt"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// GhostWriterConfig configures the per-field hint generator.
type GhostWriterConfig struct {
	Prompt string `mapstructure:"prompt" yaml:"prompt"`
	// HintTimeout bounds a single hint request.
	HintTimeout time.Duration `mapstructure:"hint_timeout" yaml:"hint_timeout"`
}

// StoreConfig locates the file-backed stores (navigation history, settings).
type StoreConfig struct {
	// DataDir defaults to ~/.ghostfill when empty.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// PersistenceConfig points at the external generation-record API.
type PersistenceConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ControlPlaneConfig configures the optional HTTP control plane.
type ControlPlaneConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ghostfill")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.navigation_timeout", "60s")

	// -- LLM --
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "30s")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.requests_per_minute", 30)

	// -- Scraper --
	v.SetDefault("scraper.timeout", "20s")
	v.SetDefault("scraper.retries", 1)
	v.SetDefault("scraper.optimization", true)
	v.SetDefault("scraper.max_html_bytes", 120_000)

	// -- Filler --
	v.SetDefault("filler.timeout", "25s")

	// -- Ghost Writer --
	v.SetDefault("ghost_writer.hint_timeout", "10s")

	// -- Persistence --
	v.SetDefault("persistence.timeout", "10s")

	// -- Control plane --
	v.SetDefault("control_plane.listen_addr", "127.0.0.1:7642")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("llm.api_key", "GHOSTFILL_LLM_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GHOSTFILL_LLM_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be one of [%s, %s], got %q",
			ProviderGemini, ProviderOpenAI, c.LLM.Provider)
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.Scraper.MaxHTMLBytes <= 0 {
		return fmt.Errorf("scraper.max_html_bytes must be a positive integer")
	}
	if c.Filler.Timeout <= 0 {
		return fmt.Errorf("filler.timeout must be a positive duration")
	}
	return nil
}

// DataDir resolves the configured data directory, defaulting to
// ~/.ghostfill. The directory is created if missing.
func (c *Config) DataDir() (string, error) {
	dir := c.Store.DataDir
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".ghostfill")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}

// AsSettings maps the engine-relevant portion of the config onto the
// externally-owned Settings shape used by the settings store defaults.
func (c *Config) AsSettings() schemas.Settings {
	return schemas.Settings{
		AIModel: schemas.AIModelSettings{
			Provider: string(c.LLM.Provider),
			Model:    c.LLM.Model,
			APIKey:   c.LLM.APIKey,
		},
		Scraper: schemas.ScraperSettings{
			Timeout:      c.Scraper.Timeout,
			Retries:      c.Scraper.Retries,
			Optimization: c.Scraper.Optimization,
		},
		Filler: schemas.FillerSettings{
			Prompt:  c.Filler.Prompt,
			Timeout: c.Filler.Timeout,
		},
		GhostWriter: schemas.GhostWriterSettings{
			Prompt: c.GhostWriter.Prompt,
		},
	}
}
