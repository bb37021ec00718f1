package advisor

import (
	"context"
	"sync"
)

// Ticket identifies one outstanding advice request.
type Ticket struct {
	Key string
	Ctx context.Context
	gen uint64
}

type pending struct {
	gen    uint64
	cancel context.CancelFunc
}

// Tracker keeps at most one outstanding request per key. Starting a new one
// cancels the previous, and a finished request only counts if it is still the
// newest for its key.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	active map[string]pending
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]pending)}
}

// Begin cancels any outstanding request for key and starts a new one derived
// from parent.
func (t *Tracker) Begin(parent context.Context, key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.active[key]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.gen++
	t.active[key] = pending{gen: t.gen, cancel: cancel}
	return Ticket{Key: key, Ctx: ctx, gen: t.gen}
}

// Finish releases the ticket and reports whether it was still current. A
// false result means the reply is stale and must be dropped.
func (t *Tracker) Finish(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.active[tk.Key]
	if !ok || cur.gen != tk.gen {
		return false
	}
	cur.cancel()
	delete(t.active, tk.Key)
	return true
}

// Cancel abandons the outstanding request for key, if any.
func (t *Tracker) Cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.active[key]; ok {
		cur.cancel()
		delete(t.active, key)
	}
}

func (t *Tracker) Busy(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[key]
	return ok
}
