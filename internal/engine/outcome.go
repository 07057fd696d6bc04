package engine

import (
	"time"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/dialect"
)

// Kind tags the variant of an Outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindFault
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFault:
		return "fault"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// FaultKind classifies a KindFault outcome.
type FaultKind string

const (
	FaultTranspile  FaultKind = "transpile"
	FaultEvaluation FaultKind = "evaluation"
	FaultTimeout    FaultKind = "timeout"
)

// Status is the caller-facing collapse of Kind.
type Status string

const (
	StatusOK                Status = "ok"
	StatusDependencyMissing Status = "dependency-missing"
	StatusFault             Status = "fault"
)

// Outcome is produced exactly once per Request.
type Outcome struct {
	RunID     string
	Dialect   dialect.Dialect
	Kind      Kind
	Fault     FaultKind // set when Kind is KindFault
	Text      string    // captured output, or diagnostic text
	Truncated bool
	Duration  time.Duration

	// OutputBytes counts what the snippet printed. It is zero unless the
	// run succeeded, since faults replace the output with a diagnostic.
	OutputBytes int
}

// Success wraps captured output.
func Success(text string) Outcome {
	return Outcome{Kind: KindSuccess, Text: text}
}

// Fault wraps diagnostic text for a failed run.
func Fault(kind FaultKind, diagnostic string) Outcome {
	return Outcome{Kind: KindFault, Fault: kind, Text: diagnostic}
}

// Unavailable reports a missing dependency.
func Unavailable(message string) Outcome {
	return Outcome{Kind: KindUnavailable, Text: message}
}

func (o Outcome) Status() Status {
	switch o.Kind {
	case KindSuccess:
		return StatusOK
	case KindUnavailable:
		return StatusDependencyMissing
	default:
		return StatusFault
	}
}
