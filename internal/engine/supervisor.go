package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/metrics"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/sandbox"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/transpile"
)

// Supervisor evaluates source text inside a sandbox under a wall-clock
// deadline. It is the only place where run failures are caught and turned
// into outcomes.
type Supervisor struct {
	timeout time.Duration
	grace   time.Duration
	slots   *semaphore.Weighted
	logger  *zerolog.Logger
}

// NewSupervisor returns a supervisor admitting at most maxConcurrent runs at once.
func NewSupervisor(timeout, grace time.Duration, maxConcurrent int64, logger *zerolog.Logger) *Supervisor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Supervisor{
		timeout: timeout,
		grace:   grace,
		slots:   semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
	}
}

// Timeout returns the per-run deadline.
func (s *Supervisor) Timeout() time.Duration { return s.timeout }

// Execute calls prepare to obtain host-native source, evaluates it in sc and
// drains its timers. The deadline covers all three steps. Evaluation runs on
// its own goroutine; when the deadline passes the runtime is interrupted,
// and a worker that has not stopped within the grace period is abandoned.
func (s *Supervisor) Execute(ctx context.Context, prepare func() (string, error), sc *sandbox.Context) Outcome {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return Fault(FaultEvaluation, "Error: run cancelled before start: "+err.Error())
	}
	defer s.slots.Release(1)

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(runCtx, func() { sc.Interrupt(runCtx.Err()) })
	defer stop()

	done := make(chan Outcome, 1)
	go func() { done <- s.evaluate(runCtx, prepare, sc) }()

	select {
	case out := <-done:
		return out
	case <-runCtx.Done():
	}

	grace := time.NewTimer(s.grace)
	defer grace.Stop()
	select {
	case out := <-done:
		return out
	case <-grace.C:
		s.logger.Warn().Dur("grace", s.grace).Msg("abandoning run that ignored interrupt")
		return s.stopped(runCtx)
	}
}

func (s *Supervisor) evaluate(ctx context.Context, prepare func() (string, error), sc *sandbox.Context) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Fault(FaultEvaluation, fmt.Sprintf("InternalError: %v\n%s", r, debug.Stack()))
		}
	}()

	source, err := prepare()
	if err != nil {
		return s.classify(ctx, err)
	}
	if err := sc.Eval(source); err != nil {
		return s.classify(ctx, err)
	}
	if err := sc.Drain(ctx); err != nil {
		return s.classify(ctx, err)
	}

	out = Success(sc.Output())
	out.Truncated = sc.Buffer().Truncated()
	out.OutputBytes = sc.Buffer().Len()
	return out
}

func (s *Supervisor) classify(ctx context.Context, err error) Outcome {
	var (
		syntax      *transpile.SyntaxError
		interrupted *goja.InterruptedError
		exception   *goja.Exception
	)
	switch {
	case errors.Is(err, transpile.ErrUnavailable):
		return Unavailable(err.Error())
	case errors.As(err, &syntax):
		return Fault(FaultTranspile, syntax.Error())
	case errors.As(err, &interrupted),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return s.stopped(ctx)
	case errors.As(err, &exception):
		return Fault(FaultEvaluation, strings.TrimRight(exception.String(), "\n"))
	default:
		return Fault(FaultEvaluation, err.Error())
	}
}

// stopped describes a run ended by its context.
func (s *Supervisor) stopped(ctx context.Context) Outcome {
	if errors.Is(ctx.Err(), context.Canceled) {
		return Fault(FaultEvaluation, "Error: run cancelled: "+ctx.Err().Error())
	}
	return Fault(FaultTimeout, fmt.Sprintf("Error: Script execution timed out after %dms", s.timeout.Milliseconds()))
}
