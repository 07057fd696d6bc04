package sandbox

import (
	"strings"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, name := range []string{"console", "print", "setTimeout", "clearTimeout", "setInterval", "clearInterval"} {
		if !p.IsAllowed(name) {
			t.Errorf("%s should be allowed", name)
		}
	}
	for _, name := range []string{"require", "process", "fetch", "setImmediate"} {
		if p.IsAllowed(name) {
			t.Errorf("%s should not be allowed", name)
		}
	}
}

func TestDefaultPolicyIsACopy(t *testing.T) {
	p := DefaultPolicy()
	p.Bindings[0] = "require"
	if DefaultBindings[0] != Console {
		t.Fatal("DefaultPolicy shares its slice with DefaultBindings")
	}
}

func TestValidateRejectsUnknownBinding(t *testing.T) {
	p := Policy{Bindings: []Binding{Console, "require"}}
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), `"require"`) {
		t.Fatalf("Validate() = %v, want unknown binding error", err)
	}

	if err := (Policy{MaxOutputBytes: -1}).Validate(); err == nil {
		t.Error("negative output limit accepted")
	}
}

func TestPolicyFromNames(t *testing.T) {
	p := PolicyFromNames(nil, 10)
	if len(p.Bindings) != len(DefaultBindings) || p.MaxOutputBytes != 10 {
		t.Errorf("PolicyFromNames(nil) = %+v", p)
	}

	p = PolicyFromNames([]string{"console", "setTimeout"}, 0)
	if !p.IsAllowed("setTimeout") || p.IsAllowed("print") {
		t.Errorf("PolicyFromNames(console,setTimeout) = %+v", p)
	}
}
