// Package stat evaluates trained models against a dataset and ranks them
// by error. Evaluation is read-only: models are loaded, forward-passed,
// and never mutated or re-saved.
package stat

import (
	"fmt"
	"os"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/nn"
	"github.com/haskel/2b2q/internal/storage"
)

// ModelReport is one model's score over the dataset.
type ModelReport struct {
	Path     string  `json:"path"`
	Topology []int   `json:"topology"`
	MSE      float64 `json:"mse"`
}

// RunPrediction is one model's estimate for one queue run's start point.
type RunPrediction struct {
	Path string `json:"path"`

	// PredictedHours is the denormalized wait estimate.
	PredictedHours float64 `json:"predicted_hours"`

	// DiffMinutes is predicted minus real, in minutes.
	DiffMinutes float64 `json:"diff_minutes"`
}

// RunReport is the per-run breakdown for one queue session.
type RunReport struct {
	File          string          `json:"file"`
	Position      uint16          `json:"position"`
	Length        uint16          `json:"length"`
	RealHours     float64         `json:"real_hours"`
	BaselineHours float64         `json:"baseline_hours"`
	Models        []RunPrediction `json:"models"`
}

// Baseline is the legacy estimator's score over the run start points.
type Baseline struct {
	// MSE is computed on the same normalized targets as the models, so
	// the numbers are directly comparable.
	MSE float64 `json:"mse"`

	MeanAbsMinutes    float64 `json:"mean_abs_minutes"`
	MeanSignedMinutes float64 `json:"mean_signed_minutes"`
}

// Report is the full stat output: models ranked by ascending error, ties
// in input order, plus the optional per-run and baseline sections.
type Report struct {
	Models   []ModelReport `json:"models"`
	Runs     []RunReport   `json:"runs,omitempty"`
	Baseline *Baseline     `json:"baseline,omitempty"`
}

// Options select the optional report sections.
type Options struct {
	// Runs adds the per-run breakdown.
	Runs bool

	// Baseline adds the legacy estimator comparison.
	Baseline bool

	// Progress renders an evaluation progress bar on stderr.
	Progress bool
}

// Evaluate scores every model at paths over ds and ranks them. A missing
// model file fails with storage.ErrNotFound; a model whose input width
// does not match the dataset fails with nn.ShapeError before any sample
// is evaluated.
func Evaluate(ds *dataset.Dataset, paths []string, opts Options) (*Report, error) {
	if ds.Len() == 0 {
		return nil, dataset.ErrEmpty
	}

	models := make([]*storage.Model, len(paths))
	for i, path := range paths {
		m, err := storage.Load(path)
		if err != nil {
			return nil, err
		}
		if want := m.Net.InputWidth(); want != ds.FeatureWidth() {
			return nil, fmt.Errorf("%s: %w", path, &nn.ShapeError{Want: want, Got: ds.FeatureWidth()})
		}
		models[i] = m
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		// Stderr keeps stdout clean for the rendered report.
		bar = progressbar.NewOptions(len(models)*ds.Len(),
			progressbar.OptionSetDescription("evaluating"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}

	report := &Report{}
	for i, m := range models {
		mse, err := meanSquaredError(m.Net, ds, bar)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
		report.Models = append(report.Models, ModelReport{
			Path:     paths[i],
			Topology: m.Net.Topology(),
			MSE:      mse,
		})
	}

	sort.SliceStable(report.Models, func(a, b int) bool {
		return report.Models[a].MSE < report.Models[b].MSE
	})

	if opts.Runs {
		runs, err := runReports(ds, paths, models)
		if err != nil {
			return nil, err
		}
		report.Runs = runs
	}
	if opts.Baseline {
		report.Baseline = baseline(ds)
	}
	return report, nil
}

func meanSquaredError(net *nn.Network, ds *dataset.Dataset, bar *progressbar.ProgressBar) (float64, error) {
	var total float64
	for _, s := range ds.Samples {
		out, err := net.ForwardPass(s.Inputs)
		if err != nil {
			return 0, err
		}
		d := out[0] - s.Target
		total += d * d
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return total / float64(ds.Len()), nil
}

func runReports(ds *dataset.Dataset, paths []string, models []*storage.Model) ([]RunReport, error) {
	reports := make([]RunReport, 0, len(ds.Runs))
	for _, run := range ds.Runs {
		rr := RunReport{
			File:          run.File,
			Position:      run.Position,
			Length:        run.Length,
			RealHours:     run.WaitHours,
			BaselineHours: dataset.LegacyETA(run.Position, run.Length) / 3600.0,
		}
		for i, m := range models {
			out, err := m.Net.ForwardPass(run.Inputs)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paths[i], err)
			}
			predicted := dataset.WaitHours(out[0])
			rr.Models = append(rr.Models, RunPrediction{
				Path:           paths[i],
				PredictedHours: predicted,
				DiffMinutes:    (predicted - run.WaitHours) * 60.0,
			})
		}
		reports = append(reports, rr)
	}
	return reports, nil
}

// baseline scores the legacy estimator over the run start points.
func baseline(ds *dataset.Dataset) *Baseline {
	if len(ds.Runs) == 0 {
		return &Baseline{}
	}

	var sq, abs, signed float64
	for _, run := range ds.Runs {
		hours := dataset.LegacyETA(run.Position, run.Length) / 3600.0
		predicted := dataset.NormWait(hours * 3600.0 * 1000.0)
		target := dataset.NormWait(run.WaitHours * 3600.0 * 1000.0)
		d := predicted - target
		sq += d * d

		diff := (hours - run.WaitHours) * 60.0
		signed += diff
		if diff < 0 {
			diff = -diff
		}
		abs += diff
	}

	n := float64(len(ds.Runs))
	return &Baseline{
		MSE:               sq / n,
		MeanAbsMinutes:    abs / n,
		MeanSignedMinutes: signed / n,
	}
}
