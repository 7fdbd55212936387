package store

import (
	"context"
	"sync"
	"time"
)

// Instrumentation is shared by every entity store in one Store. Op names are
// namespaced as "<store>.<method>", e.g. "bans.list".
type Instrumentation struct {
	mu       sync.Mutex
	calls    map[string]int
	failNext map[string]error
	latency  time.Duration
}

func newInstrumentation() *Instrumentation {
	return &Instrumentation{
		calls:    make(map[string]int),
		failNext: make(map[string]error),
	}
}

// observe counts the call, applies simulated latency, and pops any injected
// error. Latency respects context cancellation.
func (ins *Instrumentation) observe(ctx context.Context, op string) error {
	if ins == nil {
		return nil
	}
	ins.mu.Lock()
	ins.calls[op]++
	d := ins.latency
	injected := ins.failNext[op]
	if injected != nil {
		delete(ins.failNext, op)
	}
	ins.mu.Unlock()
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return injected
}

func (ins *Instrumentation) Calls(op string) int {
	if ins == nil {
		return 0
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.calls[op]
}

// FailNext makes the next call to op return err instead of executing.
func (ins *Instrumentation) FailNext(op string, err error) {
	if ins == nil || err == nil {
		return
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.failNext[op] = err
}

func (ins *Instrumentation) SetLatency(d time.Duration) {
	if ins == nil {
		return
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.latency = d
}

// reset clears counters and pending injected errors. The latency setting
// survives so a slow-store simulation persists across Reset.
func (ins *Instrumentation) reset() {
	if ins == nil {
		return
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.calls = make(map[string]int)
	ins.failNext = make(map[string]error)
}
