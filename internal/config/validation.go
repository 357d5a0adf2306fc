package config

import (
	"errors"
	"fmt"
	"math"
	"net"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Training.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}

	if err := c.Dataset.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dataset: %w", err))
	}

	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Dashboard.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dashboard: %w", err))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (t *TrainingConfig) Validate() error {
	var errs []error

	if t.Rate <= 0 || math.IsNaN(t.Rate) || math.IsInf(t.Rate, 0) {
		errs = append(errs, fmt.Errorf("rate must be a positive finite number, got %v", t.Rate))
	}

	if t.Momentum < 0 || math.IsNaN(t.Momentum) || math.IsInf(t.Momentum, 0) {
		errs = append(errs, fmt.Errorf("momentum must be a non-negative finite number, got %v", t.Momentum))
	}

	if t.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch_size must be non-negative, got %d", t.BatchSize))
	}

	if t.LogInterval < 1 {
		errs = append(errs, fmt.Errorf("log_interval must be at least 1, got %d", t.LogInterval))
	}

	return errors.Join(errs...)
}

func (d *DatasetConfig) Validate() error {
	if d.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", d.Workers)
	}
	return nil
}

func (h *HistoryConfig) Validate() error {
	if h.Enabled && h.Path == "" {
		return fmt.Errorf("path cannot be empty when history is enabled")
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		return fmt.Errorf("invalid addr %q: %w", s.Addr, err)
	}
	return nil
}

func (d *DashboardConfig) Validate() error {
	if d.RefreshMS < 50 {
		return fmt.Errorf("refresh_ms must be at least 50, got %d", d.RefreshMS)
	}
	return nil
}
