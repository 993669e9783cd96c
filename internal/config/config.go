package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ogulcanaydogan/slotwatch/pkg/slotdate"
)

// Config holds all slotwatch configuration.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Target  TargetConfig  `mapstructure:"target"`
	Mail    MailConfig    `mapstructure:"mail"`
	State   StateConfig   `mapstructure:"state"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// SourceConfig defines the availability API.
type SourceConfig struct {
	URL           string        `mapstructure:"url"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Origin        string        `mapstructure:"origin"`
	UserAgent     string        `mapstructure:"user_agent"`
	ListKey       string        `mapstructure:"list_key"`
	LocationField string        `mapstructure:"location_field"`
}

// TargetConfig defines what to watch for.
type TargetConfig struct {
	Location   string `mapstructure:"location"`
	CutoffDate string `mapstructure:"cutoff_date"`
	BookingURL string `mapstructure:"booking_url"`
}

// MailConfig defines SMTP delivery. To is a comma or semicolon separated list.
type MailConfig struct {
	From     string        `mapstructure:"from"`
	To       string        `mapstructure:"to"`
	Password string        `mapstructure:"password"`
	SMTPHost string        `mapstructure:"smtp_host"`
	SMTPPort int           `mapstructure:"smtp_port"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StateConfig defines where the last observation is kept.
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// AlertsConfig defines chat and webhook integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines metrics output for one-shot runs.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// WatchConfig defines the polling loop.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Listen   string        `mapstructure:"listen"`
}

// State backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// legacyEnv maps config keys to the variable names older deployments export.
var legacyEnv = map[string]string{
	"source.api_key": "VISA_API_KEY",
	"mail.from":      "EMAIL_FROM",
	"mail.to":        "EMAIL_TO",
	"mail.password":  "EMAIL_PASSWORD",
	"mail.smtp_host": "SMTP_SERVER",
	"mail.smtp_port": "SMTP_PORT",
}

// Load reads configuration from an optional .env file, a config file and
// environment variables, in increasing order of precedence for the latter two.
func Load(cfgFile, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".slotwatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("source.url", "https://app.checkvisaslots.com/slots/v3")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.origin", "chrome-extension://beepaenfejnphdgnkmccjcfiieihhogl")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("source.list_key", "slotDetails")
	v.SetDefault("source.location_field", "visa_location")
	v.SetDefault("target.location", "ABU DHABI")
	v.SetDefault("target.booking_url", "https://checkvisaslots.com/latest-us-visa-availability/b1b2-regular/")
	v.SetDefault("mail.smtp_host", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.timeout", 30*time.Second)
	v.SetDefault("state.backend", BackendFile)
	v.SetDefault("state.path", "last_state.json")
	v.SetDefault("alerts.slack.channel", "#visa-slots")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("watch.interval", 15*time.Minute)

	// Zero values, so AutomaticEnv sees every key. Viper only reads the
	// environment for keys it already knows.
	for _, key := range []string{
		"source.api_key",
		"target.cutoff_date",
		"mail.from", "mail.to", "mail.password",
		"alerts.slack.webhook_url",
		"alerts.webhook.url", "alerts.webhook.secret",
		"metrics.textfile",
		"watch.listen",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("alerts.slack.enabled", false)
	v.SetDefault("alerts.webhook.enabled", false)

	// Environment variables
	v.SetEnvPrefix("SLOTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "SLOTWATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile exports the variables in path unless they are already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Target.Location) == "" {
		errs = append(errs, errors.New("target.location must not be empty"))
	}
	if _, err := c.Cutoff(); err != nil {
		errs = append(errs, err)
	}
	switch c.State.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("state.backend %q: want %q or %q", c.State.Backend, BackendFile, BackendSQLite))
	}
	if c.State.Path == "" {
		errs = append(errs, errors.New("state.path must not be empty"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("source.timeout must be positive, got %s", c.Source.Timeout))
	}
	if c.Watch.Interval <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval))
	}
	if c.Mail.SMTPPort <= 0 || c.Mail.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("mail.smtp_port out of range: %d", c.Mail.SMTPPort))
	}

	return errors.Join(errs...)
}

// Cutoff parses target.cutoff_date. An empty value means no cutoff.
func (c *Config) Cutoff() (*slotdate.Date, error) {
	if strings.TrimSpace(c.Target.CutoffDate) == "" {
		return nil, nil
	}
	d, err := slotdate.Parse(c.Target.CutoffDate)
	if err != nil {
		return nil, fmt.Errorf("target.cutoff_date: %w", err)
	}
	return &d, nil
}
