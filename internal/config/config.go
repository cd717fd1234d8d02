package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	CRM     CRMConfig     `yaml:"crm" mapstructure:"crm"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Panel   PanelConfig   `yaml:"panel" mapstructure:"panel"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local state database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CRMConfig holds Salesforce JWT auth settings and call limits.
type CRMConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	Username     string  `yaml:"username" mapstructure:"username"`
	KeyPath      string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL     string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	TokenTTLMins int     `yaml:"token_ttl_mins" mapstructure:"token_ttl_mins"`
}

// BrowserConfig configures the Chrome DevTools attachment.
type BrowserConfig struct {
	RemoteURL   string `yaml:"remote_url" mapstructure:"remote_url"`
	Headless    bool   `yaml:"headless" mapstructure:"headless"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ExtractConfig configures page extraction.
type ExtractConfig struct {
	StrategyFile string `yaml:"strategy_file" mapstructure:"strategy_file"`
}

// PanelConfig configures the side-panel controller.
type PanelConfig struct {
	// SupportedPattern is the substring a tab URL must contain for the
	// panel to be eligible.
	SupportedPattern string `yaml:"supported_pattern" mapstructure:"supported_pattern"`
	// GestureWindowMillis bounds how long after a user gesture an open
	// request is still honored.
	GestureWindowMillis int `yaml:"gesture_window_ms" mapstructure:"gesture_window_ms"`
}

// GestureWindow returns the gesture window as a duration.
func (p PanelConfig) GestureWindow() time.Duration {
	return time.Duration(p.GestureWindowMillis) * time.Millisecond
}

// ImportConfig configures the CRM import pipeline.
type ImportConfig struct {
	LeadSource    string `yaml:"lead_source" mapstructure:"lead_source"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RetryMax      int    `yaml:"retry_max" mapstructure:"retry_max"`
}

// ServerConfig configures the panel message server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.path", "prospector.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8731)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("crm.login_url", "https://login.salesforce.com")
	v.SetDefault("crm.rate_limit_rps", 5)
	v.SetDefault("crm.token_ttl_mins", 110)
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.timeout_secs", 30)
	v.SetDefault("panel.supported_pattern", "linkedin.com/in/")
	v.SetDefault("panel.gesture_window_ms", 1000)
	v.SetDefault("import.lead_source", "Prospector Extension")
	v.SetDefault("import.max_concurrent", 3)
	v.SetDefault("import.retry_max", 3)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
