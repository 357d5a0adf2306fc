// Package cli wires the commands: new, train, stat, history, status.
// Commands return classified errors; Execute maps them to the exit codes
// documented per error category.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/config"
	"github.com/haskel/2b2q/internal/logger"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info (set from main)
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "2b2q",
	Short: "Queue wait prediction for 2b2t",
	Long: `2b2q trains small feed-forward networks on recorded queue logs and
predicts how long the login queue will take. Create a model with "new",
train it against a directory of CSV queue logs with "train", and compare
trained models with "stat".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code for the error's
// category.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text|json)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// loadConfig resolves the effective config: file values over defaults,
// global flags over both.
func loadConfig() *config.Config {
	cfg := config.LoadOrDefault(cfgFile)
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}
