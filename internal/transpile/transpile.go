// Package transpile turns TypeScript snippets into JavaScript the engine can
// evaluate. The transpiler backend is acquired lazily, at most once per
// Adapter, and the result of that acquisition is kept for the Adapter's
// lifetime.
package transpile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/metrics"
)

// DefaultBackend is the transpiler linked into the binary.
const DefaultBackend = "esbuild"

// ErrUnavailable is matched by errors reporting that no transpiler could be acquired.
var ErrUnavailable = errors.New("transpiler unavailable")

// Transpiler converts foreign-dialect source into host-native source.
type Transpiler interface {
	Transpile(source string) (string, error)
}

// Acquirer obtains a Transpiler. It is called at most once per Adapter.
type Acquirer func() (Transpiler, error)

var backends = map[string]Acquirer{
	"esbuild": acquireEsbuild,
	"none": func() (Transpiler, error) {
		return nil, errors.New("transpilation disabled by configuration")
	},
}

// Backends lists the registered backend names.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnavailableError reports a transpiler that could not be acquired.
type UnavailableError struct {
	Backend string
	Cause   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("TypeScript requested but transpiler %q is not available: %v. Set engine.transpiler to %q to enable it.",
		e.Backend, e.Cause, DefaultBackend)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Adapter owns the process-wide transpiler handle.
type Adapter struct {
	backend string
	acquire Acquirer

	once sync.Once
	tr   Transpiler
	err  error
}

// New returns an Adapter for a registered backend. An unknown name yields an
// Adapter whose acquisition always fails.
func New(backend string) *Adapter {
	if backend == "" {
		backend = DefaultBackend
	}
	acq, ok := backends[backend]
	if !ok {
		acq = func() (Transpiler, error) {
			return nil, fmt.Errorf("unknown backend (available: %s)", strings.Join(Backends(), ", "))
		}
	}
	return NewWithAcquirer(backend, acq)
}

// NewWithAcquirer returns an Adapter that acquires its transpiler with acq.
func NewWithAcquirer(backend string, acq Acquirer) *Adapter {
	return &Adapter{backend: backend, acquire: acq}
}

// Backend returns the configured backend name.
func (a *Adapter) Backend() string { return a.backend }

// Ensure acquires the transpiler on first use. A failed acquisition is
// sticky: later calls report the same error without retrying.
func (a *Adapter) Ensure() error {
	a.once.Do(func() {
		tr, err := a.acquire()
		switch {
		case err != nil:
			a.err = &UnavailableError{Backend: a.backend, Cause: err}
		case tr == nil:
			a.err = &UnavailableError{Backend: a.backend, Cause: errors.New("backend returned no transpiler")}
		default:
			a.tr = tr
		}
		result := "ok"
		if a.err != nil {
			result = "unavailable"
		}
		metrics.TranspilerAcquisitions.WithLabelValues(a.backend, result).Inc()
	})
	return a.err
}

// Transpile converts source after making sure the transpiler is available.
func (a *Adapter) Transpile(source string) (string, error) {
	if err := a.Ensure(); err != nil {
		return "", err
	}
	return a.tr.Transpile(source)
}
