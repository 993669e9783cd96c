package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage alert delivery",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample alert through every configured notifier",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)

	notifyTestCmd.Flags().Int("slots", 1, "Slot count shown in the sample alert")
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slots, _ := cmd.Flags().GetInt("slots")
	logger := newLogger(cfg)

	settings, err := trackerSettings(cfg)
	if err != nil {
		return err
	}
	dispatcher := tracker.NewDispatcher(initNotifiers(cfg), settings, logger)

	sample := model.Observation{Location: cfg.Target.Location, Slots: slots}.WithCheckedAt(time.Now())
	deliveries, err := dispatcher.SendTest(cmd.Context(), sample)
	for _, d := range deliveries {
		if d.Err != nil {
			fmt.Printf("%-8s FAILED  %v\n", d.Notifier, d.Err)
		} else {
			fmt.Printf("%-8s OK\n", d.Notifier)
		}
	}
	if err != nil {
		return fmt.Errorf("send test alert: %w", err)
	}
	return nil
}
