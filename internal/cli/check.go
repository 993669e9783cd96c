package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/slotwatch/pkg/metrics"
	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check slot availability once and alert on new slots",
	Long: `Fetch the availability document, compare the target location's slot count
with the saved state, send alerts when slots opened or increased and save the
new observation. Run failures are reported but do not change the exit code.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file after the run (default from config)")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("metrics-textfile"); path != "" {
		cfg.Metrics.Textfile = path
	}

	logger := newLogger(cfg)

	var opts []tracker.Option
	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.NewCollector()
		opts = append(opts, tracker.WithObserver(collector))
	}

	runner, store, err := initRunner(cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Checking visa slots at %s\n", time.Now().Format("2006-01-02 15:04:05"))
	res := runner.Run(cmd.Context())
	printResult(os.Stdout, res, cfg.Target.Location, cfg.Target.CutoffDate)

	if collector != nil {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}
	return nil
}

// printResult writes the operator-facing summary of a run.
func printResult(w io.Writer, res tracker.Result, target, cutoff string) {
	switch res.Outcome {
	case tracker.OutcomeFetchFailed:
		fmt.Fprintf(w, "Failed to fetch data: %v\n", res.FetchErr)
		return
	case tracker.OutcomeNoMatch:
		fmt.Fprintf(w, "Could not find %s in response\n", target)
		return
	}

	obs := res.Observation
	fmt.Fprintf(w, "Current slots for %s: %d\n", target, obs.Slots)

	switch res.Transition {
	case model.TransitionBaseline:
		fmt.Fprintln(w, "First run - establishing baseline")
		if obs.Slots > 0 {
			fmt.Fprintf(w, "Note: %d slots currently available\n", obs.Slots)
		}
	case model.TransitionOpened:
		fmt.Fprintf(w, "SLOTS OPENED! %s now has %d slots!\n", target, obs.Slots)
	case model.TransitionIncreased:
		fmt.Fprintf(w, "More slots available! Went from %d to %d\n", res.Previous.Slots, obs.Slots)
	}

	if res.CutoffChecked {
		date := obs.StartDateValue()
		if res.CutoffPassed {
			fmt.Fprintf(w, "Date %s is before cutoff %s - sending notification\n", date, cutoff)
		} else {
			fmt.Fprintf(w, "Date %s is after cutoff %s - skipping notification\n", date, cutoff)
		}
	}

	for _, d := range res.Deliveries {
		if d.Err != nil {
			fmt.Fprintf(w, "Error sending %s alert: %v\n", d.Notifier, d.Err)
		} else {
			fmt.Fprintf(w, "Alert sent via %s\n", d.Notifier)
		}
	}
	if res.LoadErr != nil {
		fmt.Fprintf(w, "Error loading state: %v\n", res.LoadErr)
	}
	if res.SaveErr != nil {
		fmt.Fprintf(w, "Error saving state: %v\n", res.SaveErr)
	}

	fmt.Fprintln(w, "Check complete")
}
