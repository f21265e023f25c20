// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"fmt"
	"iter"

	"code.hybscloud.com/kont"
)

// Outcome kinds for the driver's resumption loop.
const (
	oSuspended uint8 = iota // suspended on an awaitable emission
	oDelegated              // suspended on a delegation
	oDone                   // completed with an erased result
	oFailed                 // failed without internal recovery
)

// outcome is the classified result of one run-to-completion step of a
// delegation frame.
type outcome struct {
	kind  uint8
	value kont.Resumed
	err   error
}

// runner is a delegation frame: the driver's erased view of a Coro.
type runner interface {
	runStart() outcome
	runResume(msg kont.Either[error, kont.Resumed]) outcome
}

// driver advances a stack of delegation frames, innermost last, by
// answering the innermost frame's suspensions with the settled
// outcomes of what it emits. A frame's terminal outcome is relayed
// into the frame below as a plain resumption message; the root frame's
// terminal outcome settles the driver itself.
type driver struct {
	ex      *Executor
	stack   []runner
	deliver func(msg kont.Either[error, kont.Resumed])
	resolve func(v kont.Resumed)
	reject  func(reason error)
}

func (d *driver) top() runner {
	return d.stack[len(d.stack)-1]
}

// begin starts the root coroutine.
func (d *driver) begin() {
	d.advance(d.top().runStart())
}

// inject answers the innermost frame's pending suspension.
func (d *driver) inject(msg kont.Either[error, kont.Resumed]) {
	d.advance(d.top().runResume(msg))
}

// advance relays frame outcomes until the stack suspends on an
// awaitable or empties into the driver's own settlement.
func (d *driver) advance(o outcome) {
	for {
		switch o.kind {
		case oSuspended:
			f := Normalize(d.ex, o.value)
			f.handled = true
			f.register(func(v kont.Resumed) {
				d.deliver(kont.Right[error, kont.Resumed](v))
			}, func(reason error) {
				d.deliver(kont.Left[error, kont.Resumed](reason))
			})
			return
		case oDelegated:
			o = d.push(o.value)
		case oDone:
			d.pop()
			if len(d.stack) == 0 {
				d.resolve(o.value)
				return
			}
			o = d.top().runResume(kont.Right[error, kont.Resumed](o.value))
		case oFailed:
			d.pop()
			if len(d.stack) == 0 {
				d.reject(o.err)
				return
			}
			o = d.top().runResume(kont.Left[error, kont.Resumed](o.err))
		}
	}
}

func (d *driver) pop() {
	d.stack[len(d.stack)-1] = nil
	d.stack = d.stack[:len(d.stack)-1]
}

// push enters a delegation body. A sequence body drains without
// suspending: each element is treated as a resumption value and the
// final one becomes the delegation result. Anything that is not a
// coroutine or a sequence is a construction failure.
func (d *driver) push(body kont.Resumed) outcome {
	switch b := body.(type) {
	case *Coro[kont.Resumed]:
		if b.State() != NotStarted {
			panic("await: delegation to a started coroutine")
		}
		d.stack = append(d.stack, b)
		return b.runStart()
	case kont.Eff[kont.Resumed]:
		c := NewCoro(b)
		d.stack = append(d.stack, c)
		return c.runStart()
	case kont.Expr[kont.Resumed]:
		c := NewCoroExpr(b)
		d.stack = append(d.stack, c)
		return c.runStart()
	case iter.Seq[kont.Resumed]:
		var last kont.Resumed
		for v := range b {
			last = v
		}
		return outcome{kind: oDone, value: last}
	default:
		panic(fmt.Sprintf("await: cannot delegate to %T", body))
	}
}

// Run drives c to completion on ex, exposing the terminal outcome as
// a Future: completion fulfills it, an unrecovered failure rejects it.
// The start is deferred, so Run returns before the body runs.
//
// The returned Future is itself awaitable, so one coroutine may await
// another's driver directly, as an alternative to delegation.
func Run[R any](ex *Executor, c *Coro[R]) *Future[R] {
	if c.State() != NotStarted {
		panic("await: coroutine already driven")
	}
	fut := NewFuture[R](ex)
	d := &driver{ex: ex, stack: []runner{c}}
	d.resolve = func(kont.Resumed) {
		r, _ := c.Result()
		fut.Resolve(r)
	}
	d.reject = fut.Reject
	d.deliver = d.inject
	ex.Defer(d.begin)
	return fut
}

// RunEff instantiates and drives body in one call.
func RunEff[R any](ex *Executor, body kont.Eff[R]) *Future[R] {
	return Run(ex, NewCoro(body))
}

// Exec drives c to completion and blocks for the outcome, flushing
// the executor with adaptive backoff.
func Exec[R any](ex *Executor, c *Coro[R]) (R, error) {
	return Run(ex, c).Wait()
}

// ExecEff instantiates, drives, and blocks for body in one call.
func ExecEff[R any](ex *Executor, body kont.Eff[R]) (R, error) {
	return RunEff(ex, body).Wait()
}
