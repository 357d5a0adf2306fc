package config

import "time"

type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Training  TrainingConfig  `yaml:"training"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	History   HistoryConfig   `yaml:"history"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TrainingConfig holds the defaults for a training session; the train
// command's flags override individual fields.
type TrainingConfig struct {
	Rate     float64 `yaml:"rate"`
	Momentum float64 `yaml:"momentum"`

	// BatchSize is the number of samples per training unit.
	// 0 means the whole dataset (one unit per epoch).
	BatchSize int `yaml:"batch_size"`

	// LogInterval is the number of batch iterations between
	// error-rate snapshots.
	LogInterval int `yaml:"log_interval"`

	Loop    bool `yaml:"loop"`
	Logging bool `yaml:"logging"`
}

type DatasetConfig struct {
	// Workers is the number of CSV files parsed concurrently.
	// 0 means one worker per CPU.
	Workers int `yaml:"workers"`

	// Lenient skips malformed data rows with a warning instead of
	// failing the whole load. Header errors always fail.
	Lenient bool `yaml:"lenient"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type DashboardConfig struct {
	RefreshMS int `yaml:"refresh_ms"`
}

func (c *Config) DashboardRefresh() time.Duration {
	return time.Duration(c.Dashboard.RefreshMS) * time.Millisecond
}
