package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no run matches an id or prefix.
var ErrNotFound = errors.New("run not found")

// RunStatus mirrors the caller-facing status of a finished run.
type RunStatus string

const (
	StatusOK                RunStatus = "ok"
	StatusDependencyMissing RunStatus = "dependency-missing"
	StatusFault             RunStatus = "fault"
)

// Origin names the surface a run was submitted through.
type Origin string

const (
	OriginHTTP Origin = "http"
	OriginWS   Origin = "ws"
	OriginCLI  Origin = "cli"
	OriginREPL Origin = "repl"
	OriginMCP  Origin = "mcp"
)

// Run is the metadata kept for a finished run. Source text and output are
// never stored.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Dialect     string    `json:"dialect" yaml:"dialect"`
	Status      RunStatus `json:"status" yaml:"status"`
	FaultKind   string    `json:"fault_kind,omitempty" yaml:"fault_kind,omitempty"`
	Origin      Origin    `json:"origin" yaml:"origin"`
	OutputBytes int       `json:"output_bytes" yaml:"output_bytes"`
	DurationMs  int64     `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// RunListOptions controls filtering and pagination for ListRuns.
type RunListOptions struct {
	Status  RunStatus
	Dialect string
	Limit   int
	Offset  int
}

// Store is the persistence interface for run history.
type Store interface {
	// RecordRun inserts a run. The ID field must be set by the caller; a zero
	// CreatedAt is set to now.
	RecordRun(ctx context.Context, r *Run) error

	// GetRun returns a run by ID or unique ID prefix.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs ordered by created_at descending.
	ListRuns(ctx context.Context, opts RunListOptions) ([]Run, error)

	// PruneRuns deletes runs created before the given time and reports how many.
	PruneRuns(ctx context.Context, before time.Time) (int64, error)

	// Close releases resources.
	Close() error
}
