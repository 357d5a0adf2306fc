package tui

import (
	"time"

	"github.com/haskel/2b2q/internal/train"
)

// errHistorySize is how many recent error readings the bar keeps.
const errHistorySize = 40

// Config holds the dashboard's view of the session.
type Config struct {
	ModelPath string
	Topology  []int
	DataDir   string
	Samples   int
	Halts     []string
	Loop      bool

	RefreshInterval time.Duration

	// Snapshots delivers training progress; the channel closing means the
	// session is over and the dashboard should exit.
	Snapshots <-chan train.Snapshot

	// Cancel requests a clean session stop (same path as an interrupt).
	Cancel func()
}

// Model represents the dashboard state
type Model struct {
	config Config

	snap    *train.Snapshot
	history []float64

	width    int
	height   int
	started  time.Time
	quitting bool
}

func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		started: time.Now(),
	}
}
