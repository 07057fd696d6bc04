package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/sandbox"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Outcome
		want string
	}{
		{"trims output", Success("\n  hi \n"), "hi"},
		{"empty output", Success(""), NoOutput},
		{"whitespace output", Success(" \n\t"), NoOutput},
		{"inner newlines kept", Success("a\n\nb\n"), "a\n\nb"},
		{"fault passes through", Fault(FaultEvaluation, "Error: boom"), "Error: boom"},
		{"empty fault", Fault(FaultEvaluation, ""), unknownFault},
		{"unavailable", Unavailable("transpiler missing"), "transpiler missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponse(t *testing.T) {
	o := Fault(FaultTimeout, "Error: Script execution timed out after 5ms")
	o.RunID = "abc"
	o.Duration = 7 * time.Millisecond

	want := Response{
		RunID:      "abc",
		Status:     StatusFault,
		Text:       "Error: Script execution timed out after 5ms",
		DurationMs: 7,
	}
	if diff := cmp.Diff(want, o.Response()); diff != "" {
		t.Errorf("Response() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusCollapse(t *testing.T) {
	for _, tt := range []struct {
		o    Outcome
		want Status
	}{
		{Success("x"), StatusOK},
		{Fault(FaultTranspile, "x"), StatusFault},
		{Fault(FaultEvaluation, "x"), StatusFault},
		{Fault(FaultTimeout, "x"), StatusFault},
		{Unavailable("x"), StatusDependencyMissing},
	} {
		if got := tt.o.Status(); got != tt.want {
			t.Errorf("%s/%s status = %s, want %s", tt.o.Kind, tt.o.Fault, got, tt.want)
		}
	}
}

func TestSupervisorAbandonsUncooperativeWork(t *testing.T) {
	sup := NewSupervisor(50*time.Millisecond, 50*time.Millisecond, 1, nil)
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	out := sup.Execute(context.Background(), func() (string, error) {
		<-release
		return "", nil
	}, sandbox.New(sandbox.DefaultPolicy()))

	if out.Fault != FaultTimeout {
		t.Fatalf("fault = %q, want timeout", out.Fault)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("abandonment took %s", elapsed)
	}
}

func TestSupervisorRecoversPanics(t *testing.T) {
	sup := NewSupervisor(time.Second, 0, 1, nil)

	out := sup.Execute(context.Background(), func() (string, error) {
		panic("prepare exploded")
	}, sandbox.New(sandbox.DefaultPolicy()))

	if out.Kind != KindFault || !strings.Contains(out.Text, "prepare exploded") {
		t.Errorf("outcome = %s %q", out.Kind, out.Text)
	}
}

func TestResponseIgnoresDurationWhenComparingRuns(t *testing.T) {
	e := testEngine(t, nil)
	req := Request{Dialect: "ts", Source: "enum C { A = 1 }; print(C.A)"}

	a := e.Execute(context.Background(), req)
	b := e.Execute(context.Background(), req)
	opts := cmpopts.IgnoreFields(Response{}, "RunID", "DurationMs")
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}
}
