// Package sandbox builds the isolated binding environment a snippet runs in.
//
// Each run gets a brand-new Context: a fresh goja runtime, its own capture
// buffer, and its own timer queue. Only the bindings named by the Policy are
// installed on the global object; there is no require, process, file system
// or network access.
//
// The boundary is cooperative. It limits which host capabilities are
// reachable by name, inside the same process as the host. It is not a
// process or hardware isolation boundary and does not defend against a
// determined adversarial snippet.
package sandbox

import (
	"context"
	"strings"

	"github.com/dop251/goja"
)

// ScriptName is the file name reported in evaluation stack traces.
const ScriptName = "snippet.js"

var consoleMethods = []string{"log", "info", "warn", "error", "debug"}

var installers = map[Binding]func(c *Context){
	Console: func(c *Context) {
		obj := c.vm.NewObject()
		for _, m := range consoleMethods {
			_ = obj.Set(m, c.native(m, c.print))
		}
		_ = c.vm.Set(string(Console), obj)
	},
	Print: func(c *Context) {
		c.global(Print, c.print)
	},
	SetTimeout: func(c *Context) {
		c.global(SetTimeout, func(call goja.FunctionCall) goja.Value {
			return c.timers.schedule(call, false)
		})
	},
	SetInterval: func(c *Context) {
		c.global(SetInterval, func(call goja.FunctionCall) goja.Value {
			return c.timers.schedule(call, true)
		})
	},
	ClearTimeout: func(c *Context) {
		c.global(ClearTimeout, c.timers.clear)
	},
	ClearInterval: func(c *Context) {
		c.global(ClearInterval, c.timers.clear)
	},
}

// Context is the binding environment of a single run. It is not safe for
// concurrent use, except for Interrupt.
type Context struct {
	vm      *goja.Runtime
	out     *CaptureBuffer
	timers  *scheduler
	globals []string
}

// New builds a fresh Context exposing only the bindings in p. Bindings the
// sandbox does not recognise are skipped; callers validate the policy first.
func New(p Policy) *Context {
	vm := goja.New()
	c := &Context{
		vm:     vm,
		out:    NewCaptureBuffer(p.MaxOutputBytes),
		timers: newScheduler(vm),
	}
	for _, b := range p.Bindings {
		install, ok := installers[b]
		if !ok {
			continue
		}
		install(c)
		c.globals = append(c.globals, string(b))
	}
	return c
}

// native returns fn as a function object called name. goja names Go
// functions after their Go symbol, and stack traces read that name.
func (c *Context) native(name string, fn func(goja.FunctionCall) goja.Value) *goja.Object {
	obj := c.vm.ToValue(fn).(*goja.Object)
	_ = obj.DefineDataProperty("name", c.vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	return obj
}

func (c *Context) global(b Binding, fn func(goja.FunctionCall) goja.Value) {
	_ = c.vm.Set(string(b), c.native(string(b), fn))
}

// Globals lists the bindings installed in this context.
func (c *Context) Globals() []string {
	out := make([]string, len(c.globals))
	copy(out, c.globals)
	return out
}

// Eval runs host-native source text to completion of its synchronous part.
func (c *Context) Eval(source string) error {
	_, err := c.vm.RunScript(ScriptName, source)
	return err
}

// Drain runs scheduled timer callbacks in due order until none remain, the
// context ends, or a callback throws.
func (c *Context) Drain(ctx context.Context) error {
	for {
		t := c.timers.next()
		if t == nil {
			return nil
		}
		if err := c.timers.wait(ctx, t); err != nil {
			return err
		}
		if t.interval > 0 {
			c.timers.reschedule(t)
		} else {
			c.timers.remove(t.id)
		}
		if _, err := t.fn(goja.Undefined(), t.args...); err != nil {
			return err
		}
	}
}

// Pending returns the number of scheduled timers.
func (c *Context) Pending() int { return len(c.timers.timers) }

// Interrupt aborts running script code. It may be called from any goroutine,
// and takes effect at the next instruction boundary, or on the next Eval if
// nothing is running.
func (c *Context) Interrupt(v any) { c.vm.Interrupt(v) }

// Output returns the captured text.
func (c *Context) Output() string { return c.out.String() }

// Buffer exposes the capture buffer of this run.
func (c *Context) Buffer() *CaptureBuffer { return c.out }

// print appends the space-joined string form of its arguments and a newline.
// null and undefined render as empty strings, as Array.prototype.join does.
func (c *Context) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		if arg == nil || goja.IsUndefined(arg) || goja.IsNull(arg) {
			continue
		}
		parts[i] = arg.String()
	}
	c.out.Append(strings.Join(parts, " ") + "\n")
	return goja.Undefined()
}
