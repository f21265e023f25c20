// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Serial identifies a session within its group.
// Each call to [Group.Spawn] assigns the next value.
type Serial = uint32

// ErrSessionDone reports a Step on a session whose driver has already
// settled.
var ErrSessionDone = errors.New("await: session already completed")

// A Group coordinates multiple driver sessions over a shared mutable
// context. Only one session performs a resumption step at any instant;
// the caller's explicit Step order is the concurrency schedule, so an
// interleaving's result is a deterministic function of the call
// sequence. Within a step, a session runs to its next suspension point
// without interruption.
type Group[C any] struct {
	ex      *Executor
	shared  C
	serials atomix.Uint32
}

// NewGroup creates a coordinator over ex with the given shared
// context. Coroutine bodies typically also reach the context through
// their own captures; Shared is the common access point.
func NewGroup[C any](ex *Executor, shared C) *Group[C] {
	if ex == nil {
		panic("await: nil executor")
	}
	return &Group[C]{ex: ex, shared: shared}
}

// Shared returns the group's shared mutable context.
func (g *Group[C]) Shared() C {
	return g.shared
}

// Executor returns the executor the group's sessions run on.
func (g *Group[C]) Executor() *Executor {
	return g.ex
}

// A Session is one driver instance advanced by explicit stepping
// instead of automatic resumption. Settled outcomes are parked until
// the next Step injects them.
type Session struct {
	serial   Serial
	d        *driver
	fut      *Future[kont.Resumed]
	started  bool
	awaiting bool
	done     bool
	ready    *kont.Either[error, kont.Resumed]
}

// Serial returns the serial number assigned to this session.
func (s *Session) Serial() Serial {
	return s.serial
}

// Future exposes the session's terminal outcome.
func (s *Session) Future() *Future[kont.Resumed] {
	return s.fut
}

// Spawn registers a coroutine as a steppable session. Nothing runs
// until the first Step.
func (g *Group[C]) Spawn(c *Coro[kont.Resumed]) *Session {
	if c.State() != NotStarted {
		panic("await: coroutine already driven")
	}
	s := &Session{serial: g.serials.Add(1)}
	s.fut = NewFuture[kont.Resumed](g.ex)
	s.d = &driver{ex: g.ex, stack: []runner{c}}
	s.d.resolve = func(v kont.Resumed) {
		s.done = true
		s.fut.Resolve(v)
	}
	s.d.reject = func(reason error) {
		s.done = true
		s.fut.Reject(reason)
	}
	s.d.deliver = func(msg kont.Either[error, kont.Resumed]) {
		m := msg
		s.ready = &m
	}
	return s
}

// Step performs exactly one resume-and-wait cycle for s: inject the
// parked settlement (start the coroutine, on the first call), run to
// the next suspension point, then wait until that suspension's
// awaitable settles. The settled message is parked, not injected; the
// next resumption belongs to the next Step. It never resumes another
// session — their parked settlements stay parked until their own Step.
//
// Blocks with adaptive backoff when the settlement depends on an
// external event such as a timer.
func (g *Group[C]) Step(s *Session) error {
	var bo iox.Backoff
	for {
		err := g.TryStep(s)
		if !iox.IsWouldBlock(err) {
			return err
		}
		bo.Wait()
	}
}

// TryStep is the non-blocking Step. It returns iox.ErrWouldBlock while
// the cycle's awaited settlement is not yet available; the cycle
// resumes at its wait phase on the next call, so retrying never
// performs a second resumption.
func (g *Group[C]) TryStep(s *Session) error {
	if s.done {
		return ErrSessionDone
	}
	if !s.awaiting {
		// Resume phase. After a completed cycle the settlement to
		// inject is always parked: parking it is what ended the cycle.
		if !s.started {
			s.started = true
			s.d.begin()
		} else {
			msg := *s.ready
			s.ready = nil
			s.d.inject(msg)
		}
		if s.done {
			return nil
		}
		s.awaiting = true
	}
	// Wait phase: flush until this cycle's settlement parks.
	if s.ready == nil {
		g.ex.Flush()
	}
	if s.ready == nil && !s.done {
		return iox.ErrWouldBlock
	}
	s.awaiting = false
	return nil
}
