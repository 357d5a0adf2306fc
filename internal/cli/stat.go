package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/stat"
)

var statCmd = &cobra.Command{
	Use:   "stat DATA_DIR MODELS...",
	Short: "Rank models by prediction error over a dataset",
	Long: `Evaluate every MODEL against the queue logs in DATA_DIR and print them
ranked by mean squared error, best first. Evaluation is read-only: no
model is modified.

--runs adds a per-run breakdown: each queue session's real wait against
every model's prediction and the legacy formula's estimate.`,
	Example: `  2b2q stat data/ models/*.json
  2b2q stat data/ models/10-6-2-4-1.json --runs
  2b2q stat data/ models/a.json models/b.json --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStat,
}

var (
	statRuns       bool
	statNoBaseline bool
	statLenient    bool
	statJSON       bool
)

func init() {
	statCmd.Flags().BoolVar(&statRuns, "runs", false, "show the per-run breakdown")
	statCmd.Flags().BoolVar(&statNoBaseline, "no-baseline", false, "skip the legacy estimator comparison")
	statCmd.Flags().BoolVar(&statLenient, "lenient", false, "skip malformed CSV rows with a warning")
	statCmd.Flags().BoolVar(&statJSON, "json", false, "output JSON instead of a table")
	rootCmd.AddCommand(statCmd)
}

func runStat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if statLenient {
		cfg.Dataset.Lenient = true
	}
	log := newLogger(cfg)

	dataDir, models := args[0], args[1:]

	ds, err := dataset.Parse(dataDir, dataset.Options{
		Workers: cfg.Dataset.Workers,
		Lenient: cfg.Dataset.Lenient,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	report, err := stat.Evaluate(ds, models, stat.Options{
		Runs:     statRuns,
		Baseline: !statNoBaseline,
		Progress: !statJSON,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(out, renderRanking(report))
	if report.Baseline != nil {
		fmt.Fprintln(out, renderBaseline(report.Baseline))
	}
	if statRuns {
		fmt.Fprintln(out, renderRuns(report))
	}
	return nil
}

var (
	statHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statBestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	statCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func renderRanking(report *stat.Report) string {
	var b strings.Builder
	b.WriteString(statHeaderStyle.Render(fmt.Sprintf("%-4s %-40s %-16s %s", "#", "MODEL", "TOPOLOGY", "MSE")))
	b.WriteString("\n")

	for i, m := range report.Models {
		style := statCellStyle
		if i == 0 {
			style = statBestStyle
		}
		widths := make([]string, len(m.Topology))
		for j, w := range m.Topology {
			widths[j] = fmt.Sprintf("%d", w)
		}
		b.WriteString(style.Render(fmt.Sprintf("%-4d %-40s %-16s %.6f",
			i+1, m.Path, strings.Join(widths, "-"), m.MSE)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBaseline(bl *stat.Baseline) string {
	return statMutedStyle.Render(fmt.Sprintf(
		"legacy formula: mse %.6f, avg abs diff %.1f min, avg diff %+.1f min",
		bl.MSE, bl.MeanAbsMinutes, bl.MeanSignedMinutes))
}

func renderRuns(report *stat.Report) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(statHeaderStyle.Render(fmt.Sprintf("%-24s %-12s %-10s %-10s %s", "RUN", "POS/LEN", "REAL", "LEGACY", "MODELS (pred, diff)")))
	b.WriteString("\n")

	for _, run := range report.Runs {
		preds := make([]string, len(run.Models))
		for i, p := range run.Models {
			preds[i] = fmt.Sprintf("%.1fh %+0.0fm", p.PredictedHours, p.DiffMinutes)
		}
		b.WriteString(statCellStyle.Render(fmt.Sprintf("%-24s %-12s %-10s %-10s %s",
			filepath.Base(run.File),
			fmt.Sprintf("%d/%d", run.Position, run.Length),
			fmt.Sprintf("%.1fh", run.RealHours),
			fmt.Sprintf("%.1fh", run.BaselineHours),
			strings.Join(preds, "  "))))
		b.WriteString("\n")
	}
	return b.String()
}
