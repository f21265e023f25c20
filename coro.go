// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"errors"

	"code.hybscloud.com/kont"
)

// Status is the lifecycle state of a [Coro].
type Status uint8

const (
	NotStarted Status = iota
	Suspended
	Running // transient, observable only from inside a resumption
	Completed
	Failed
)

// String returns the state name.
func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Suspended:
		return "Suspended"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

// ErrDiscarded is the failure reason of a discarded coroutine.
var ErrDiscarded = errors.New("await: coroutine discarded")

// A Coro is a suspendable computation advanced by resumption messages:
// Start runs it to the first suspension point, Resume answers the
// pending suspension with a value, ResumeError injects a failure the
// body may recover from at a [YieldTry]. Each call runs the body
// without interruption until the next suspension point or a terminal
// state.
//
// A Coro is owned by a single driver and is not safe for concurrent
// use. API misuse — double start, resuming a coroutine that is not
// suspended, reentrant resumption — panics synchronously.
type Coro[R any] struct {
	expr      kont.Expr[R]
	susp      *kont.Suspension[R]
	status    Status
	emitted   kont.Resumed
	deleg     kont.Resumed
	delegated bool
	result    R
	err       error
}

// NewCoro instantiates a coroutine from its body. Inputs are whatever
// the body's closures captured; nothing runs until Start.
func NewCoro[R any](body kont.Eff[R]) *Coro[R] {
	return &Coro[R]{expr: kont.Reify(body)}
}

// NewCoroExpr instantiates a coroutine from an Expr-world body.
func NewCoroExpr[R any](body kont.Expr[R]) *Coro[R] {
	return &Coro[R]{expr: body}
}

// Start runs the body to its first suspension point or completion.
func (c *Coro[R]) Start() Status {
	if c.status != NotStarted {
		panic("await: coroutine already started")
	}
	c.status = Running
	result, susp := kont.StepExpr(c.expr)
	return c.settle(result, susp)
}

// Resume answers the pending suspension with a fulfillment value.
func (c *Coro[R]) Resume(v kont.Resumed) Status {
	return c.resume(kont.Right[error, kont.Resumed](v))
}

// ResumeError injects reason into the pending suspension. The body
// recovers at a [YieldTry]/[DelegTry], or the failure propagates to
// the coroutine's own terminal state.
func (c *Coro[R]) ResumeError(reason error) Status {
	return c.resume(kont.Left[error, kont.Resumed](reason))
}

func (c *Coro[R]) resume(msg kont.Either[error, kont.Resumed]) Status {
	if c.status != Suspended {
		panic("await: coroutine not suspended")
	}
	susp := c.susp
	c.susp = nil
	c.emitted = nil
	c.deleg = nil
	c.delegated = false
	c.status = Running
	result, next := susp.Resume(msg)
	return c.settle(result, next)
}

// settle classifies the outcome of one run-to-completion step.
func (c *Coro[R]) settle(result R, susp *kont.Suspension[R]) Status {
	if susp == nil {
		c.result = result
		c.status = Completed
		return c.status
	}
	switch op := susp.Op().(type) {
	case Yield:
		c.susp = susp
		c.emitted = op.Value
		c.status = Suspended
	case Deleg:
		c.susp = susp
		c.deleg = op.Body
		c.delegated = true
		c.status = Suspended
	case Throw:
		susp.Discard()
		c.err = op.Err
		c.status = Failed
	default:
		susp.Discard()
		panic("await: unhandled effect in coroutine")
	}
	return c.status
}

// State returns the current lifecycle state.
func (c *Coro[R]) State() Status {
	return c.status
}

// Emitted returns the value emitted at the pending suspension point.
func (c *Coro[R]) Emitted() kont.Resumed {
	return c.emitted
}

// Delegated returns the pending delegation body, if the pending
// suspension is a delegation.
func (c *Coro[R]) Delegated() (kont.Resumed, bool) {
	return c.deleg, c.delegated
}

// Result returns the terminal outcome. Meaningful once the coroutine
// is Completed or Failed.
func (c *Coro[R]) Result() (R, error) {
	return c.result, c.err
}

// Discard releases a coroutine that will not be driven further,
// failing it with ErrDiscarded. Discarding a terminal coroutine is a
// no-op; discarding from inside a resumption panics.
func (c *Coro[R]) Discard() {
	switch c.status {
	case Completed, Failed:
		return
	case Running:
		panic("await: discard during resumption")
	}
	if c.susp != nil {
		c.susp.Discard()
		c.susp = nil
	}
	c.emitted = nil
	c.deleg = nil
	c.delegated = false
	c.err = ErrDiscarded
	c.status = Failed
}

// runStart implements runner.
func (c *Coro[R]) runStart() outcome {
	return c.outcomeOf(c.Start())
}

// runResume implements runner.
func (c *Coro[R]) runResume(msg kont.Either[error, kont.Resumed]) outcome {
	return c.outcomeOf(c.resume(msg))
}

func (c *Coro[R]) outcomeOf(st Status) outcome {
	switch st {
	case Suspended:
		if c.delegated {
			return outcome{kind: oDelegated, value: c.deleg}
		}
		return outcome{kind: oSuspended, value: c.emitted}
	case Completed:
		return outcome{kind: oDone, value: kont.Resumed(c.result)}
	default:
		return outcome{kind: oFailed, err: c.err}
	}
}
