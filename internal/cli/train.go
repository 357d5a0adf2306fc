package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/cli/tui"
	"github.com/haskel/2b2q/internal/config"
	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/history"
	"github.com/haskel/2b2q/internal/logger"
	"github.com/haskel/2b2q/internal/monitor"
	"github.com/haskel/2b2q/internal/server"
	"github.com/haskel/2b2q/internal/storage"
	"github.com/haskel/2b2q/internal/train"
)

var trainCmd = &cobra.Command{
	Use:   "train DATA_DIR MODEL",
	Short: "Train a model against a directory of queue logs",
	Long: `Train MODEL on every CSV queue log in DATA_DIR.

Halt conditions compose: training stops when any of --epochs, --timer, or
--mse trips. With --loop each halt checkpoints the model and starts a new
iteration over the same data, until interrupted; an interrupt finishes the
batch in flight, saves, and exits cleanly. --loop cannot be combined with
--mse.`,
	Example: `  2b2q train data/ models/10-6-2-4-1.json --epochs 200 --loop=false
  2b2q train data/ models/10-6-2-4-1.json --timer 600
  2b2q train data/ models/10-6-2-4-1.json --mse 0.005
  2b2q train data/ models/10-6-2-4-1.json --timer 60 --tui`,
	Args: cobra.ExactArgs(2),
	RunE: runTrain,
}

var (
	trainEpochs    int
	trainTimer     float64
	trainMSE       float64
	trainLoop      bool
	trainLogging   bool
	trainLogRate   int
	trainRate      float64
	trainMomentum  float64
	trainBatchSize int
	trainLenient   bool
	trainTUI       bool
	trainListen    string
	trainHistory   bool
	trainHistoryDB string
)

func init() {
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "halt after N epochs")
	trainCmd.Flags().Float64Var(&trainTimer, "timer", 0, "halt after SECONDS of training")
	trainCmd.Flags().Float64Var(&trainMSE, "mse", 0, "halt once training error reaches RATE")
	trainCmd.Flags().BoolVar(&trainLoop, "loop", true, "restart after each halt, checkpointing between iterations")
	trainCmd.Flags().BoolVar(&trainLogging, "logging", true, "log an error-rate snapshot periodically")
	trainCmd.Flags().IntVar(&trainLogRate, "logging-err-rate", 0, "batches between snapshots")
	trainCmd.Flags().Float64Var(&trainRate, "rate", 0, "learning rate")
	trainCmd.Flags().Float64Var(&trainMomentum, "momentum", 0, "momentum")
	trainCmd.Flags().IntVar(&trainBatchSize, "batch-size", 0, "samples per training unit, 0 = whole dataset")
	trainCmd.Flags().BoolVar(&trainLenient, "lenient", false, "skip malformed CSV rows with a warning")
	trainCmd.Flags().BoolVar(&trainTUI, "tui", false, "show the live dashboard instead of log output")
	trainCmd.Flags().StringVar(&trainListen, "listen", "", "serve live status on ADDR")
	trainCmd.Flags().BoolVar(&trainHistory, "history", false, "record this run in the history database")
	trainCmd.Flags().StringVar(&trainHistoryDB, "history-db", "", "history database path")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyTrainFlags(cmd, cfg)

	log := newLogger(cfg)
	if trainTUI {
		// The dashboard owns the terminal.
		cfg.Training.Logging = false
		log = logger.Discard()
	}

	dataDir, modelPath := args[0], args[1]

	halts, err := buildHalts(cmd)
	if err != nil {
		return err
	}

	ds, err := dataset.Parse(dataDir, dataset.Options{
		Workers: cfg.Dataset.Workers,
		Lenient: cfg.Dataset.Lenient,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	model, err := storage.Load(modelPath)
	if err != nil {
		return err
	}

	sess := &train.Session{
		Dataset:     ds,
		Engine:      model.Net,
		Saver:       model,
		Halts:       halts,
		Loop:        cfg.Training.Loop,
		Rate:        cfg.Training.Rate,
		Momentum:    cfg.Training.Momentum,
		BatchSize:   cfg.Training.BatchSize,
		Logging:     cfg.Training.Logging,
		LogInterval: cfg.Training.LogInterval,
	}
	if err := sess.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := train.New(sess, log)

	sampler, err := monitor.NewSampler(monitor.DefaultInterval, log)
	if err != nil {
		log.Warn("resource sampling unavailable", "error", err)
	} else {
		sampler.Start()
		defer sampler.Stop()
		orch.Sampler = sampler
	}

	tracker := &train.Tracker{}
	orch.OnSnapshot = tracker.Update

	if addr := statusAddr(cfg); addr != "" {
		srv := server.New(addr, server.Meta{
			ModelPath: modelPath,
			Topology:  model.Net.Topology(),
			DataDir:   dataDir,
			Samples:   ds.Len(),
			StartedAt: time.Now(),
		}, tracker, log)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	recorder := openHistory(cfg, log)
	var runID uuid.UUID
	if recorder != nil {
		runID, err = recorder.Begin(history.Run{
			ModelPath: modelPath,
			Topology:  topologyString(model.Net.Topology()),
			DataDir:   dataDir,
			Samples:   ds.Len(),
			Halts:     haltNames(halts),
			Loop:      sess.Loop,
		})
		if err != nil {
			log.Warn("failed to record run start", "error", err)
			recorder = nil
		}
	}

	log.Info("training started",
		"model", modelPath,
		"data", dataDir,
		"samples", ds.Len(),
		"halts", haltNames(halts),
		"loop", sess.Loop,
		"rate", sess.Rate,
		"momentum", sess.Momentum,
	)

	var res *train.Result
	var runErr error
	if trainTUI {
		res, runErr = runWithDashboard(ctx, stop, orch, tracker, cfg, modelPath, model.Net.Topology(), dataDir, ds.Len(), halts, sess.Loop)
	} else {
		res, runErr = orch.Run(ctx)
	}

	if recorder != nil {
		finishHistory(recorder, runID, res, runErr, log)
	}

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "halted by %s: %d iteration(s), %d epoch(s), final error %.6f, %d checkpoint(s), %s\n",
		res.HaltedBy, res.Iterations, res.Epochs, res.FinalErr, res.Checkpoints, res.Elapsed.Truncate(time.Millisecond))
	return nil
}

// applyTrainFlags overlays explicitly set flags on the config-backed
// session defaults. An unset --loop yields to --mse: the implicit loop
// default is dropped rather than conflicting with an explicit error
// target. An explicit --loop=true with --mse stays a conflict and is
// rejected by session validation.
func applyTrainFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("loop") {
		cfg.Training.Loop = trainLoop
	} else if flags.Changed("mse") {
		cfg.Training.Loop = false
	}
	if flags.Changed("logging") {
		cfg.Training.Logging = trainLogging
	}
	if flags.Changed("logging-err-rate") {
		cfg.Training.LogInterval = trainLogRate
	}
	if flags.Changed("rate") {
		cfg.Training.Rate = trainRate
	}
	if flags.Changed("momentum") {
		cfg.Training.Momentum = trainMomentum
	}
	if flags.Changed("batch-size") {
		cfg.Training.BatchSize = trainBatchSize
	}
	if flags.Changed("lenient") {
		cfg.Dataset.Lenient = trainLenient
	}
	if flags.Changed("history") {
		cfg.History.Enabled = trainHistory
	}
	if flags.Changed("history-db") {
		cfg.History.Enabled = true
		cfg.History.Path = trainHistoryDB
	}
}

func buildHalts(cmd *cobra.Command) ([]train.HaltCondition, error) {
	flags := cmd.Flags()
	var halts []train.HaltCondition

	if flags.Changed("epochs") {
		h, err := train.EpochCount(trainEpochs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		halts = append(halts, h)
	}
	if flags.Changed("timer") {
		h, err := train.WallClock(time.Duration(trainTimer * float64(time.Second)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		halts = append(halts, h)
	}
	if flags.Changed("mse") {
		h, err := train.TargetError(trainMSE)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		halts = append(halts, h)
	}
	return halts, nil
}

func haltNames(halts []train.HaltCondition) string {
	if len(halts) == 0 {
		return "none"
	}
	names := make([]string, len(halts))
	for i, h := range halts {
		names[i] = h.String()
	}
	return strings.Join(names, ",")
}

func statusAddr(cfg *config.Config) string {
	if trainListen != "" {
		return trainListen
	}
	if cfg.Server.Enabled {
		return cfg.Server.Addr
	}
	return ""
}

func runWithDashboard(ctx context.Context, cancel context.CancelFunc, orch *train.Orchestrator, tracker *train.Tracker, cfg *config.Config, modelPath string, topology []int, dataDir string, samples int, halts []train.HaltCondition, loop bool) (*train.Result, error) {
	snapshots := make(chan train.Snapshot, 64)
	orch.OnSnapshot = func(s train.Snapshot) {
		tracker.Update(s)
		// Drop the oldest snapshot under pressure; they are observational.
		select {
		case snapshots <- s:
		default:
			select {
			case <-snapshots:
			default:
			}
			select {
			case snapshots <- s:
			default:
			}
		}
	}

	type outcome struct {
		res *train.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := orch.Run(ctx)
		close(snapshots)
		done <- outcome{res, err}
	}()

	haltLabels := make([]string, len(halts))
	for i, h := range halts {
		haltLabels[i] = h.String()
	}

	if err := tui.Run(tui.Config{
		ModelPath:       modelPath,
		Topology:        topology,
		DataDir:         dataDir,
		Samples:         samples,
		Halts:           haltLabels,
		Loop:            loop,
		RefreshInterval: cfg.DashboardRefresh(),
		Snapshots:       snapshots,
		Cancel:          cancel,
	}); err != nil {
		cancel()
		out := <-done
		if out.err != nil {
			return out.res, out.err
		}
		return out.res, err
	}

	// The dashboard exited; make sure the session winds down too.
	cancel()
	out := <-done
	return out.res, out.err
}

func openHistory(cfg *config.Config, log *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("history disabled", "error", err)
		return nil
	}
	return store
}

// finishHistory closes the run record; recording failures are warnings,
// never training failures.
func finishHistory(store *history.Store, id uuid.UUID, res *train.Result, runErr error, log *slog.Logger) {
	out := history.Outcome{Status: history.StatusFailed}
	if res != nil {
		out.HaltedBy = res.HaltedBy
		out.Iterations = res.Iterations
		out.Epochs = res.Epochs
		out.Batches = res.Batches
		out.Checkpoints = res.Checkpoints
		out.FinalErr = res.FinalErr
	}
	if runErr == nil {
		out.Status = history.StatusHalted
		if res != nil && res.HaltedBy == "cancelled" {
			out.Status = history.StatusCancelled
		}
	}
	if err := store.Finish(id, out); err != nil {
		log.Warn("failed to record run outcome", "error", err)
	}
}

func topologyString(topology []int) string {
	parts := make([]string, len(topology))
	for i, w := range topology {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, "-")
}
