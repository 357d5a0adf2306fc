package monitor

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const DefaultInterval = 2 * time.Second

// Sampler polls the current process's CPU and resident memory on a fixed
// interval in a background goroutine and keeps the latest reading behind
// a mutex.
type Sampler struct {
	proc     *process.Process
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	latest Reading
	ok     bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSampler(interval time.Duration, logger *slog.Logger) (*Sampler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Sampler{
		proc:     proc,
		interval: interval,
		logger:   logger,
	}, nil
}

// Start launches the sampling goroutine. Stop ends it.
func (s *Sampler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sample()
		for {
			select {
			case <-ticker.C:
				s.sample()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Sampler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sampler) sample() {
	cpu, err := s.proc.CPUPercent()
	if err != nil {
		s.logger.Debug("cpu sample failed", "error", err)
		return
	}
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		s.logger.Debug("memory sample failed", "error", err)
		return
	}

	s.mu.Lock()
	s.latest = Reading{
		CPUPercent: cpu,
		RSSBytes:   mem.RSS,
		At:         time.Now(),
	}
	s.ok = true
	s.mu.Unlock()
}

// Latest returns a copy of the most recent reading; ok is false until the
// first successful sample.
func (s *Sampler) Latest() (Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.ok
}

// Resources adapts the latest reading to the orchestrator's snapshot
// contract.
func (s *Sampler) Resources() (cpuPercent float64, rssBytes uint64, ok bool) {
	r, ok := s.Latest()
	return r.CPUPercent, r.RSSBytes, ok
}
