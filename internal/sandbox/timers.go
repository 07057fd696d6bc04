package sandbox

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

const minDelay = time.Millisecond

type timer struct {
	id       int64
	seq      uint64
	due      time.Time
	interval time.Duration // zero for one-shot timers
	fn       goja.Callable
	args     []goja.Value
}

// scheduler is the per-context timer queue. Callbacks run on the goroutine
// calling Drain, never concurrently with other script code.
type scheduler struct {
	vm     *goja.Runtime
	timers map[int64]*timer
	lastID int64
	seq    uint64
}

func newScheduler(vm *goja.Runtime) *scheduler {
	return &scheduler{vm: vm, timers: make(map[int64]*timer)}
}

func (s *scheduler) schedule(call goja.FunctionCall, repeat bool) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(s.vm.NewTypeError("The \"callback\" argument must be of type function"))
	}
	delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
	if delay < minDelay {
		delay = minDelay
	}
	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = append(args, call.Arguments[2:]...)
	}

	s.lastID++
	s.seq++
	t := &timer{
		id:   s.lastID,
		seq:  s.seq,
		due:  time.Now().Add(delay),
		fn:   fn,
		args: args,
	}
	if repeat {
		t.interval = delay
	}
	s.timers[t.id] = t
	return s.vm.ToValue(t.id)
}

// clear backs both clearTimeout and clearInterval; ids are shared.
func (s *scheduler) clear(call goja.FunctionCall) goja.Value {
	s.remove(call.Argument(0).ToInteger())
	return goja.Undefined()
}

func (s *scheduler) remove(id int64) {
	delete(s.timers, id)
}

func (s *scheduler) reschedule(t *timer) {
	s.seq++
	t.seq = s.seq
	t.due = time.Now().Add(t.interval)
}

// next returns the earliest due timer, ties broken by scheduling order.
func (s *scheduler) next() *timer {
	var best *timer
	for _, t := range s.timers {
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *scheduler) wait(ctx context.Context, t *timer) error {
	d := time.Until(t.due)
	if d <= 0 {
		return ctx.Err()
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tm.C:
		return nil
	}
}
