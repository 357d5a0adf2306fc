package monitor

import (
	"testing"
	"time"

	"github.com/haskel/2b2q/internal/logger"
)

func TestSamplerLatest(t *testing.T) {
	s, err := NewSampler(10*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	if _, ok := s.Latest(); ok {
		t.Error("expected no reading before Start")
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(time.Second)
	for {
		if r, ok := s.Latest(); ok {
			if r.RSSBytes == 0 {
				t.Error("expected a non-zero resident size")
			}
			if r.At.IsZero() {
				t.Error("expected a timestamp on the reading")
			}
			_, rss, ok := s.Resources()
			if !ok || rss == 0 {
				t.Errorf("expected a populated Resources reading, got rss=%d ok=%v", rss, ok)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no reading within a second")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSamplerStopIdempotentWithoutStart(t *testing.T) {
	s, err := NewSampler(0, logger.Discard())
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	if s.interval != DefaultInterval {
		t.Errorf("expected default interval, got %v", s.interval)
	}
	s.Stop()
}
