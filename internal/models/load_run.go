package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoadRunRunning   = "running"
	LoadRunCompleted = "completed"
	LoadRunFailed    = "failed"
)

type LoadRun struct {
	ID         uuid.UUID  `json:"id"`
	RootTable  string     `json:"root_table"`
	Status     string     `json:"status"`
	TableCount *int       `json:"table_count,omitempty"`
	RowCount   *int       `json:"row_count,omitempty"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (r *LoadRun) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = LoadRunRunning
	}
}
