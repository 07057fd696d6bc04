package sandbox

import "fmt"

// Binding names a global made reachable from sandboxed code.
type Binding string

const (
	Console       Binding = "console"
	Print         Binding = "print"
	SetTimeout    Binding = "setTimeout"
	ClearTimeout  Binding = "clearTimeout"
	SetInterval   Binding = "setInterval"
	ClearInterval Binding = "clearInterval"
)

// DefaultBindings is the full whitelist: output capture plus timer primitives.
var DefaultBindings = []Binding{
	Console,
	Print,
	SetTimeout,
	ClearTimeout,
	SetInterval,
	ClearInterval,
}

// DefaultMaxOutputBytes caps captured output per run.
const DefaultMaxOutputBytes = 1 << 20

// Policy is the capability set handed to a sandbox at construction. Any
// global not listed in Bindings is unreachable apart from language built-ins.
// The whitelist keeps snippets away from the host; it does not bound memory
// use, so it is not a boundary against hostile code.
type Policy struct {
	Bindings       []Binding
	MaxOutputBytes int // 0 disables the cap
}

// DefaultPolicy returns the whitelist used when nothing is configured.
func DefaultPolicy() Policy {
	bindings := make([]Binding, len(DefaultBindings))
	copy(bindings, DefaultBindings)
	return Policy{
		Bindings:       bindings,
		MaxOutputBytes: DefaultMaxOutputBytes,
	}
}

// PolicyFromNames builds a policy from configured binding names. An empty
// list selects DefaultBindings.
func PolicyFromNames(names []string, maxOutputBytes int) Policy {
	p := Policy{MaxOutputBytes: maxOutputBytes}
	if len(names) == 0 {
		p.Bindings = append(p.Bindings, DefaultBindings...)
		return p
	}
	for _, n := range names {
		p.Bindings = append(p.Bindings, Binding(n))
	}
	return p
}

// IsAllowed checks if a global name is on the whitelist.
func (p Policy) IsAllowed(name string) bool {
	for _, b := range p.Bindings {
		if string(b) == name {
			return true
		}
	}
	return false
}

// Validate rejects bindings the sandbox does not know how to install.
func (p Policy) Validate() error {
	for _, b := range p.Bindings {
		if _, ok := installers[b]; !ok {
			return fmt.Errorf("unknown sandbox binding %q", b)
		}
	}
	if p.MaxOutputBytes < 0 {
		return fmt.Errorf("max output bytes must not be negative, got %d", p.MaxOutputBytes)
	}
	return nil
}
