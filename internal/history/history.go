// Package history records training runs in a local SQLite database so past
// sessions stay inspectable after the process exits. Recording is best
// effort: a broken database never fails a training run.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	StatusRunning   = "running"
	StatusHalted    = "halted"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Run is one recorded training session.
type Run struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ModelPath string `gorm:"not null"`
	Topology  string `gorm:"size:64;not null"`
	DataDir   string
	Samples   int

	Halts string
	Loop  bool

	StartedAt  time.Time
	FinishedAt *time.Time

	Status   string `gorm:"size:20;not null"`
	HaltedBy string `gorm:"size:20"`

	Iterations  int
	Epochs      int
	Batches     int
	Checkpoints int
	FinalErr    float64
}

// Outcome finishes a run record.
type Outcome struct {
	Status      string
	HaltedBy    string
	Iterations  int
	Epochs      int
	Batches     int
	Checkpoints int
	FinalErr    float64
}

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the history database at path and
// migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Begin inserts a running record and returns its id.
func (s *Store) Begin(run Run) (uuid.UUID, error) {
	run.ID = uuid.New()
	run.StartedAt = time.Now()
	run.Status = StatusRunning
	if err := s.db.Create(&run).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return run.ID, nil
}

// Finish closes a record with its terminal outcome.
func (s *Store) Finish(id uuid.UUID, out Outcome) error {
	now := time.Now()
	updates := map[string]any{
		"finished_at": now,
		"status":      out.Status,
		"halted_by":   out.HaltedBy,
		"iterations":  out.Iterations,
		"epochs":      out.Epochs,
		"batches":     out.Batches,
		"checkpoints": out.Checkpoints,
		"final_err":   out.FinalErr,
	}
	if err := s.db.Model(&Run{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record run outcome: %w", err)
	}
	return nil
}

// Recent lists the latest runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
