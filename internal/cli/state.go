package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the saved observation",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last saved observation",
	RunE:  runStateShow,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
}

func runStateShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	obs, err := store.Load(cmd.Context())
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Println("No state saved yet. The next check establishes the baseline.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	startDate := obs.StartDateValue()
	if startDate == "" {
		startDate = tracker.UnknownDate
	}
	checked := "-"
	if obs.Checked != nil {
		checked = *obs.Checked
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BACKEND\t%s (%s)\n", cfg.State.Backend, cfg.State.Path)
	fmt.Fprintf(w, "LOCATION\t%s\n", obs.Location)
	fmt.Fprintf(w, "SLOTS\t%d\n", obs.Slots)
	fmt.Fprintf(w, "EARLIEST DATE\t%s\n", startDate)
	fmt.Fprintf(w, "SOURCE UPDATED\t%s\n", checked)
	fmt.Fprintf(w, "LAST CHECKED\t%s\n", obs.CheckedAt.Local().Format(time.RFC3339))
	return w.Flush()
}
