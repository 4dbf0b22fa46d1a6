// Package latest keeps at most one live request per logical field. Starting
// a new request cancels the one in flight, and results of superseded
// requests are discarded instead of applied.
package latest

import (
	"context"
	"fmt"
	"sync"
)

// ErrSuperseded is returned for a request that a newer one replaced. It
// wraps context.Canceled so callers can treat it as an abort.
var ErrSuperseded = fmt.Errorf("latest: request superseded: %w", context.Canceled)

// Slot tracks the live request of one field (selected sandbox, selected
// schema, ...). The zero value is ready to use.
type Slot struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one request started on a Slot.
type Ticket struct {
	slot *Slot
	gen  uint64
}

// Begin cancels the request in flight, if any, and starts a new one. The
// returned context is cancelled when a later Begin or Cancel supersedes it.
func (s *Slot) Begin(ctx context.Context) (context.Context, Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return cctx, Ticket{slot: s, gen: s.gen}
}

// Cancel cancels the request in flight without starting a new one.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// Current reports whether t is still the latest request of its slot.
func (t Ticket) Current() bool {
	if t.slot == nil {
		return false
	}
	t.slot.mu.Lock()
	defer t.slot.mu.Unlock()
	return t.slot.gen == t.gen
}

// finish releases the context of t when it is still the live request.
func (t Ticket) finish() {
	t.slot.mu.Lock()
	defer t.slot.mu.Unlock()
	if t.slot.gen == t.gen && t.slot.cancel != nil {
		t.slot.cancel()
		t.slot.cancel = nil
	}
}

// Do runs fetch as the live request of slot and hands its result to apply
// only when no newer request started in the meantime. A superseded request
// returns ErrSuperseded and apply is never called for it.
//
// apply runs under the slot lock: a Begin or Cancel on the same slot waits
// until it returns, so apply must not start requests on slot itself.
func Do[T any](ctx context.Context, slot *Slot, fetch func(context.Context) (T, error), apply func(T)) error {
	cctx, t := slot.Begin(ctx)
	defer t.finish()
	v, err := fetch(cctx)

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.gen != t.gen {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	apply(v)
	return nil
}
