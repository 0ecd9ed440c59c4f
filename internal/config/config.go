package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is constructed once at
// process start and passed by reference into every collaborator constructor;
// component code never reads the environment directly.
type Config struct {
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Netlify   NetlifyConfig   `yaml:"netlify" mapstructure:"netlify"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SheetsConfig holds Google Sheets access settings.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	Model         string `yaml:"model" mapstructure:"model"`
	SiteMaxTokens int64  `yaml:"site_max_tokens" mapstructure:"site_max_tokens"`
	MailMaxTokens int64  `yaml:"mail_max_tokens" mapstructure:"mail_max_tokens"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NetlifyConfig holds Netlify API settings.
type NetlifyConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host      string `yaml:"host" mapstructure:"host"`
	Port      int    `yaml:"port" mapstructure:"port"`
	User      string `yaml:"user" mapstructure:"user"`
	Password  string `yaml:"password" mapstructure:"password"`
	FromName  string `yaml:"from_name" mapstructure:"from_name"`
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	TestEmail string `yaml:"test_email" mapstructure:"test_email"`
}

// PipelineConfig configures orchestrator behavior.
type PipelineConfig struct {
	Limit          int    `yaml:"limit" mapstructure:"limit"`
	WorkDir        string `yaml:"work_dir" mapstructure:"work_dir"`
	MaxScrapeChars int    `yaml:"max_scrape_chars" mapstructure:"max_scrape_chars"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and LEADPILOT_* env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEADPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets default to empty so AutomaticEnv can see their keys.
	v.SetDefault("sheets.sheet_name", "Pipeline test")
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-opus-4-6")
	v.SetDefault("anthropic.site_max_tokens", 30000)
	v.SetDefault("anthropic.mail_max_tokens", 2000)
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("netlify.token", "")
	v.SetDefault("netlify.base_url", "https://api.netlify.com/api/v1")
	v.SetDefault("smtp.host", "smtp.office365.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_name", "Dan van AiBoostly")
	v.SetDefault("smtp.from_email", "")
	v.SetDefault("smtp.test_email", "")
	v.SetDefault("pipeline.limit", 1)
	v.SetDefault("pipeline.work_dir", ".tmp")
	v.SetDefault("pipeline.max_scrape_chars", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
