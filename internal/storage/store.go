package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dyike/AdvisorGo/internal/models"
)

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// ErrReadOnly is returned by a recorder whose backing database rejects writes.
var ErrReadOnly = errors.New("history store is read-only")

// RunRecord is one pipeline run as stored in the history.
type RunRecord struct {
	ID          string
	Ticker      string
	CompanyName string
	Market      string
	Model       string
	Status      string
	Error       string
	ReportPath  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskRecord is one stored task output.
type TaskRecord struct {
	RunID     string
	Seq       int
	Output    models.TaskOutput
	CreatedAt time.Time
}

// Recorder persists execution history for pipeline runs.
type Recorder interface {
	StartRun(ctx context.Context, run RunRecord) error
	RecordTask(ctx context.Context, runID string, out models.TaskOutput) error
	FinishRun(ctx context.Context, run RunRecord) error
}

// Noop discards everything. It stands in when history cannot be written.
type Noop struct{}

func (Noop) StartRun(context.Context, RunRecord) error                   { return nil }
func (Noop) RecordTask(context.Context, string, models.TaskOutput) error { return nil }
func (Noop) FinishRun(context.Context, RunRecord) error                  { return nil }
