// Package monitor samples the training process's own resource usage so
// progress snapshots and the dashboard can report it. Purely
// observational: sampling failures degrade to absent readings.
package monitor

import "time"

// Reading is one observation of the process's resource usage.
type Reading struct {
	CPUPercent float64   `json:"cpu_percent"`
	RSSBytes   uint64    `json:"rss_bytes"`
	At         time.Time `json:"at"`
}
