package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Options control dataset loading.
type Options struct {
	// Workers is the number of files parsed concurrently; 0 means NumCPU.
	Workers int

	// Lenient skips malformed data rows instead of failing the load.
	Lenient bool

	// Logger receives skip warnings in lenient mode; nil silences them.
	Logger *slog.Logger
}

// Parse loads every .csv file directly under dir into one dataset, files in
// filename-lexicographic order, rows in source order within each file. An
// empty directory yields an empty dataset; consumers reject that at use time.
func Parse(dir string, opts Options) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	ds := &Dataset{}
	if len(files) == 0 {
		return ds, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(files))

	type fileResult struct {
		run     QueueRun
		skipped int
		err     error
	}

	// Each worker writes into its file's slot, so the merge below sees
	// results in file order no matter how parsing interleaved.
	results := make([]fileResult, len(files))
	queue := make(chan int, len(files))
	for i := range files {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range queue {
				run, skipped, err := readRun(files[i], opts.Lenient)
				results[i] = fileResult{run: run, skipped: skipped, err: err}
			}
		}()
	}
	wg.Wait()

	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		if res.skipped > 0 && opts.Logger != nil {
			opts.Logger.Warn("skipped malformed rows", "file", files[i], "rows", res.skipped)
		}
		ds.Skipped += res.skipped

		samples := res.run.Samples()
		if len(samples) == 0 {
			continue
		}
		ds.Samples = append(ds.Samples, samples...)

		start := res.run.Points[0]
		end := res.run.Points[len(res.run.Points)-1]
		ds.Runs = append(ds.Runs, RunInfo{
			File:      files[i],
			Position:  start.Position,
			Length:    start.Length,
			Inputs:    samples[0].Inputs,
			WaitHours: float64(end.Time-start.Time) / 1000.0 / 3600.0,
		})
	}

	return ds, nil
}
