package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded training runs",
	Long: `List past training runs from the history database, newest first.
Runs are recorded when training is started with --history (or history is
enabled in the config).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyDB    string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
	historyCmd.Flags().StringVar(&historyDB, "history-db", "", "history database path")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	path := cfg.History.Path
	if historyDB != "" {
		path = historyDB
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	fmt.Fprintf(out, "%-20s %-12s %-10s %-10s %8s %10s  %s\n",
		"STARTED", "TOPOLOGY", "STATUS", "HALTED BY", "EPOCHS", "FINAL ERR", "MODEL")
	for _, run := range runs {
		finalErr := "-"
		if run.FinishedAt != nil {
			finalErr = fmt.Sprintf("%.6f", run.FinalErr)
		}
		fmt.Fprintf(out, "%-20s %-12s %-10s %-10s %8d %10s  %s\n",
			run.StartedAt.Format(time.DateTime),
			run.Topology,
			run.Status,
			run.HaltedBy,
			run.Epochs,
			finalErr,
			run.ModelPath,
		)
	}
	return nil
}
