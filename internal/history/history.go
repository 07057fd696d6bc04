// Package history records finished runs in the run store.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
)

const writeTimeout = 2 * time.Second

// Recorder turns outcomes into storage records. A Recorder with a nil
// store does nothing, so callers never need to check whether history is on.
type Recorder struct {
	store  storage.Store
	logger *zerolog.Logger
}

func NewRecorder(store storage.Store, logger *zerolog.Logger) *Recorder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{store: store, logger: logger}
}

// Enabled reports whether runs are being stored.
func (r *Recorder) Enabled() bool { return r != nil && r.store != nil }

// Store returns the underlying store, or nil.
func (r *Recorder) Store() storage.Store {
	if r == nil {
		return nil
	}
	return r.store
}

// FromOutcome builds the record for an outcome.
func FromOutcome(o engine.Outcome, origin storage.Origin) storage.Run {
	return storage.Run{
		ID:          o.RunID,
		Dialect:     string(o.Dialect),
		Status:      storage.RunStatus(o.Status()),
		FaultKind:   string(o.Fault),
		Origin:      origin,
		OutputBytes: o.OutputBytes,
		DurationMs:  o.Duration.Milliseconds(),
		CreatedAt:   time.Now().Add(-o.Duration),
	}
}

// Record stores o. Storage failures are logged and otherwise ignored; run
// history never changes what the caller sees.
func (r *Recorder) Record(ctx context.Context, o engine.Outcome, origin storage.Origin) {
	if !r.Enabled() || o.RunID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	run := FromOutcome(o, origin)
	if err := r.store.RecordRun(ctx, &run); err != nil {
		r.logger.Warn().Err(err).Str("run_id", o.RunID).Msg("recording run failed")
	}
}

// Close closes the store.
func (r *Recorder) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.store.Close()
}
