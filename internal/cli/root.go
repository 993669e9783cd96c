package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/slotwatch/internal/config"
	"github.com/ogulcanaydogan/slotwatch/pkg/alerts"
	"github.com/ogulcanaydogan/slotwatch/pkg/source"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "slotwatch - visa appointment slot watcher",
	Long: `slotwatch polls a visa appointment availability API for one location,
compares the slot count with the last observation and sends an alert by
email, Slack or webhook when slots open up or increase.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.slotwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates the state store from config.
func initStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.State.Backend {
	case config.BackendSQLite:
		return storage.NewSQLite(cfg.State.Path, cfg.Target.Location)
	default:
		return storage.NewFileStore(cfg.State.Path), nil
	}
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if to := alerts.SplitAddresses(cfg.Mail.To); len(to) > 0 && cfg.Mail.From != "" {
		notifiers = append(notifiers, alerts.NewEmailNotifier(alerts.EmailConfig{
			From:     cfg.Mail.From,
			To:       to,
			Password: cfg.Mail.Password,
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Timeout:  cfg.Mail.Timeout,
		}))
	}

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// trackerSettings maps config onto the run settings.
func trackerSettings(cfg *config.Config) (tracker.Settings, error) {
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return tracker.Settings{}, err
	}

	fields := source.DefaultFields()
	if cfg.Source.ListKey != "" {
		fields.List = cfg.Source.ListKey
	}
	if cfg.Source.LocationField != "" {
		fields.Location = cfg.Source.LocationField
	}

	return tracker.Settings{
		TargetLocation: cfg.Target.Location,
		Cutoff:         cutoff,
		BookingURL:     cfg.Target.BookingURL,
		Fields:         fields,
	}, nil
}

// initRunner creates a fully wired runner. The caller closes the store.
func initRunner(cfg *config.Config, logger *slog.Logger, opts ...tracker.Option) (*tracker.Runner, storage.Store, error) {
	settings, err := trackerSettings(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Source.APIKey == "" {
		logger.Warn("no API key configured, the source will likely reject requests")
	}
	client := source.NewClient(source.ClientConfig{
		URL:       cfg.Source.URL,
		APIKey:    cfg.Source.APIKey,
		Origin:    cfg.Source.Origin,
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Source.Timeout,
	})

	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	notifiers := initNotifiers(cfg)
	if len(notifiers) == 0 {
		logger.Warn("no notifiers configured, alerts will only be logged")
	}
	dispatcher := tracker.NewDispatcher(notifiers, settings, logger)

	return tracker.NewRunner(client, store, dispatcher, settings, logger, opts...), store, nil
}
