// Package engine runs JavaScript and TypeScript snippets to completion.
//
// A run resolves the dialect tag, transpiles TypeScript when needed, builds
// a fresh sandbox and evaluates the snippet under a deadline. Every run
// yields exactly one Outcome; failures never escape as errors or panics.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/config"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/dialect"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/metrics"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/sandbox"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/transpile"
)

const (
	DefaultTimeout = 1500 * time.Millisecond
	DefaultGrace   = 250 * time.Millisecond
	MaxTimeout     = config.MaxTimeout
)

// Request is one snippet to run. Dialect is a free-form tag; unknown tags
// run as JavaScript.
type Request struct {
	Dialect string `json:"dialect"`
	Source  string `json:"source"`
}

type Options struct {
	Timeout       time.Duration
	Grace         time.Duration
	MaxConcurrent int // 0 means 4 * GOMAXPROCS
	Policy        sandbox.Policy
	Transpiler    *transpile.Adapter // nil means the esbuild backend
}

func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Grace:   DefaultGrace,
		Policy:  sandbox.DefaultPolicy(),
	}
}

// OptionsFromConfig maps the engine section of the configuration.
func OptionsFromConfig(c config.EngineConfig) Options {
	opts := DefaultOptions()
	if c.Timeout > 0 {
		opts.Timeout = c.Timeout
	}
	if c.Grace > 0 {
		opts.Grace = c.Grace
	}
	opts.MaxConcurrent = c.MaxConcurrent
	if len(c.Bindings) > 0 {
		opts.Policy = sandbox.PolicyFromNames(c.Bindings, c.MaxOutputBytes)
	} else if c.MaxOutputBytes > 0 {
		opts.Policy.MaxOutputBytes = c.MaxOutputBytes
	}
	if c.Transpiler != "" {
		opts.Transpiler = transpile.New(c.Transpiler)
	}
	return opts
}

// Engine is safe for concurrent use. Runs share nothing but the transpiler
// handle and the concurrency gate.
type Engine struct {
	policy     sandbox.Policy
	transpiler *transpile.Adapter
	sup        *Supervisor
	logger     *zerolog.Logger
}

func New(opts Options, logger *zerolog.Logger) (*Engine, error) {
	if opts.Timeout <= 0 || opts.Timeout > MaxTimeout {
		return nil, fmt.Errorf("timeout must be in (0, %s], got %s", MaxTimeout, opts.Timeout)
	}
	if opts.Grace < 0 {
		return nil, fmt.Errorf("grace must not be negative, got %s", opts.Grace)
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("sandbox policy: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4 * runtime.GOMAXPROCS(0)
	}
	tp := opts.Transpiler
	if tp == nil {
		tp = transpile.New(transpile.DefaultBackend)
	}
	return &Engine{
		policy:     opts.Policy,
		transpiler: tp,
		sup:        NewSupervisor(opts.Timeout, opts.Grace, int64(maxConcurrent), logger),
		logger:     logger,
	}, nil
}

// Timeout returns the per-run deadline.
func (e *Engine) Timeout() time.Duration { return e.sup.Timeout() }

// Budget is the longest a single run can hold its caller: the deadline plus
// the grace period given to an interrupted worker.
func (e *Engine) Budget() time.Duration { return e.sup.timeout + e.sup.grace }

// Transpiler returns the shared transpiler handle.
func (e *Engine) Transpiler() *transpile.Adapter { return e.transpiler }

// Run evaluates one request and returns its outcome.
func (e *Engine) Run(ctx context.Context, req Request) Outcome {
	start := time.Now()
	runID := uuid.New().String()
	res := dialect.Resolve(req.Dialect)

	prepare := func() (string, error) {
		if res.Mode == dialect.Native {
			return req.Source, nil
		}
		t0 := time.Now()
		out, err := e.transpiler.Transpile(req.Source)
		metrics.RunDuration.WithLabelValues(string(res.Dialect), "transpile").
			Observe(float64(time.Since(t0).Milliseconds()))
		return out, err
	}

	out := e.sup.Execute(ctx, prepare, sandbox.New(e.policy))
	out.RunID = runID
	out.Dialect = res.Dialect
	out.Duration = time.Since(start)

	status := out.Status()
	metrics.RunsTotal.WithLabelValues(string(res.Dialect), string(status)).Inc()
	metrics.RunDuration.WithLabelValues(string(res.Dialect), "total").
		Observe(float64(out.Duration.Milliseconds()))
	if out.Kind == KindSuccess {
		metrics.OutputBytes.Observe(float64(out.OutputBytes))
	}

	ev := e.logger.Info()
	if out.Kind != KindSuccess {
		ev = e.logger.Warn()
	}
	ev.Str("run_id", runID).
		Str("dialect", string(res.Dialect)).
		Str("requested", res.Requested).
		Str("status", string(status)).
		Str("fault", string(out.Fault)).
		Bool("truncated", out.Truncated).
		Dur("duration", out.Duration).
		Msg("run finished")
	return out
}

// Execute runs req and formats the result.
func (e *Engine) Execute(ctx context.Context, req Request) Response {
	return e.Run(ctx, req).Response()
}
