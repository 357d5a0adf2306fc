package train

import "sync"

// Tracker keeps the most recent snapshot behind a mutex so the status
// server and other observers can read it from their own goroutines.
// Plug its Update method into an orchestrator's OnSnapshot.
type Tracker struct {
	mu     sync.Mutex
	latest Snapshot
	ok     bool
}

func (t *Tracker) Update(s Snapshot) {
	t.mu.Lock()
	t.latest = s
	t.ok = true
	t.mu.Unlock()
}

// Snapshot returns a copy of the latest snapshot; ok is false before the
// first update.
func (t *Tracker) Snapshot() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.ok
}
