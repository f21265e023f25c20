// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"errors"
	"fmt"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Settlement states. stateResolving is the transient claim taken by
// the winning settler while it publishes the outcome; observers treat
// it as pending.
const (
	statePending uint32 = iota
	stateResolving
	stateFulfilled
	stateRejected
)

// ErrSelfResolution reports a Future asked to adopt its own
// settlement.
var ErrSelfResolution = errors.New("await: future cannot adopt itself")

// A Future is a single-settlement container for an asynchronous
// outcome. First settlement wins; terminal states are immutable and
// observable any number of times, and no observer can alter what
// another sees.
//
// Resolve and Reject are safe from any goroutine. Everything else is
// confined to the executor's goroutine.
type Future[T any] struct {
	ex     *Executor
	state  atomix.Uint32
	value  T
	reason error

	onFulfilled []func(T)
	onRejected  []func(error)
	watching    bool
	handled     bool
	reported    bool
}

// NewFuture creates a pending Future owned by ex.
func NewFuture[T any](ex *Executor) *Future[T] {
	if ex == nil {
		panic("await: nil executor")
	}
	f := &Future[T]{ex: ex}
	ex.enroll(f)
	return f
}

// Resolved returns an already-fulfilled Future carrying v.
func Resolved[T any](ex *Executor, v T) *Future[T] {
	if ex == nil {
		panic("await: nil executor")
	}
	f := &Future[T]{ex: ex, value: v}
	f.state.Store(stateFulfilled)
	return f
}

// Rejected returns an already-rejected Future carrying reason.
func Rejected[T any](ex *Executor, reason error) *Future[T] {
	if ex == nil {
		panic("await: nil executor")
	}
	f := &Future[T]{ex: ex, reason: reason}
	f.state.Store(stateRejected)
	ex.enroll(f)
	return f
}

// Resolve transitions pending → fulfilled. A Future settles at most
// once: on an already-settling or settled Future this is a no-op.
func (f *Future[T]) Resolve(v T) {
	if !f.state.CompareAndSwap(statePending, stateResolving) {
		return
	}
	f.value = v
	f.state.Store(stateFulfilled)
}

// Reject transitions pending → rejected. A Future settles at most
// once: on an already-settling or settled Future this is a no-op.
func (f *Future[T]) Reject(reason error) {
	if !f.state.CompareAndSwap(statePending, stateResolving) {
		return
	}
	f.reason = reason
	f.state.Store(stateRejected)
}

// Settled reports whether f has reached a terminal state.
func (f *Future[T]) Settled() bool {
	switch f.state.Load() {
	case stateFulfilled, stateRejected:
		return true
	}
	return false
}

// register queues continuations for f's outcome. Continuations run as
// deferred executor jobs, never on the caller's stack, in registration
// order.
func (f *Future[T]) register(onFulfilled func(T), onRejected func(error)) {
	switch f.state.Load() {
	case stateFulfilled:
		if onFulfilled != nil {
			v := f.value
			f.ex.Defer(func() { onFulfilled(v) })
		}
	case stateRejected:
		if onRejected != nil {
			reason := f.reason
			f.ex.Defer(func() { onRejected(reason) })
		}
	default:
		if onFulfilled != nil {
			f.onFulfilled = append(f.onFulfilled, onFulfilled)
		}
		if onRejected != nil {
			f.onRejected = append(f.onRejected, onRejected)
		}
		if !f.watching {
			f.watching = true
			f.ex.watch(f)
		}
	}
}

// fire implements watched.
func (f *Future[T]) fire(ex *Executor) bool {
	switch f.state.Load() {
	case stateFulfilled:
		v := f.value
		for _, fn := range f.onFulfilled {
			ex.Defer(func() { fn(v) })
		}
	case stateRejected:
		reason := f.reason
		for _, fn := range f.onRejected {
			ex.Defer(func() { fn(reason) })
		}
	default:
		return false
	}
	f.onFulfilled, f.onRejected = nil, nil
	f.watching = false
	return true
}

// orphanScan implements orphaned.
func (f *Future[T]) orphanScan() (error, orphanDisposition) {
	switch f.state.Load() {
	case stateRejected:
		if f.handled || f.reported {
			return nil, orphanDrop
		}
		f.reported = true
		return f.reason, orphanReport
	case stateFulfilled:
		return nil, orphanDrop
	default:
		return nil, orphanKeep
	}
}

// Observe registers continuations on f and returns the derived Future
// of the chosen continuation's result. A continuation result that is
// itself awaitable is adopted: the derived Future settles with its
// settlement, recursively, including foreign [Completer] values.
// A nil continuation propagates the corresponding outcome unchanged.
// Either way f's rejection counts as handled: it is consumed here or
// forwarded to the derived Future, which is tracked in its own right.
func (f *Future[T]) Observe(onFulfilled func(T) kont.Resumed, onRejected func(error) kont.Resumed) *Future[kont.Resumed] {
	out := NewFuture[kont.Resumed](f.ex)
	f.handled = true
	f.register(func(v T) {
		if onFulfilled == nil {
			out.Resolve(kont.Resumed(v))
			return
		}
		settleWith(out, func() kont.Resumed { return onFulfilled(v) })
	}, func(reason error) {
		if onRejected == nil {
			out.Reject(reason)
			return
		}
		settleWith(out, func() kont.Resumed { return onRejected(reason) })
	})
	return out
}

// OnComplete registers a dual-callback completion pair: the awaitable
// capability consumed by [Normalize]. Every Future is thus itself
// awaitable, including the driver's own result Future.
func (f *Future[T]) OnComplete(fulfill func(v kont.Resumed), reject func(err error)) {
	f.handled = true
	f.register(func(v T) { fulfill(kont.Resumed(v)) }, reject)
}

// Wait blocks until f settles, flushing the executor between polls
// with adaptive backoff. Must be called on the executor's goroutine.
// Waiting counts as handling a rejection.
func (f *Future[T]) Wait() (T, error) {
	f.handled = true
	var bo iox.Backoff
	for {
		progress := f.ex.Flush()
		switch f.state.Load() {
		case stateFulfilled:
			return f.value, nil
		case stateRejected:
			var zero T
			return zero, f.reason
		}
		if progress {
			bo.Reset()
		} else {
			bo.Wait()
		}
	}
}

// settleWith runs a continuation, adopting an awaitable result and
// converting a panic into a rejection.
func settleWith(out *Future[kont.Resumed], fn func() kont.Resumed) {
	defer func() {
		if r := recover(); r != nil {
			out.Reject(fmt.Errorf("await: continuation panic: %v", r))
		}
	}()
	adopt(out, fn())
}

// adopt settles out with v, deferring to v's own settlement when v is
// awaitable. Adoption is recursive: a settlement value that is itself
// awaitable is adopted in turn.
func adopt(out *Future[kont.Resumed], v kont.Resumed) {
	inner, ok := asAwaitable(out.ex, v)
	if !ok {
		out.Resolve(v)
		return
	}
	if inner == out {
		out.Reject(ErrSelfResolution)
		return
	}
	inner.handled = true
	inner.register(func(next kont.Resumed) { adopt(out, next) }, out.Reject)
}

// Then derives a Future by mapping f's fulfillment through fn.
// Rejections pass through untouched, carrying unhandled-ness to the
// derived Future; a panic in fn rejects the derived Future.
func Then[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out := NewFuture[U](f.ex)
	f.handled = true
	f.register(func(v T) {
		defer func() {
			if r := recover(); r != nil {
				out.Reject(fmt.Errorf("await: continuation panic: %v", r))
			}
		}()
		out.Resolve(fn(v))
	}, out.Reject)
	return out
}

// ThenFlat derives a Future by mapping f's fulfillment to an awaitable
// result, adopted into the derived Future. Rejections pass through.
func ThenFlat[T any](f *Future[T], fn func(T) kont.Resumed) *Future[kont.Resumed] {
	return f.Observe(fn, nil)
}

// Catch derives a Future that recovers f's rejection through fn.
// Fulfillments pass through; the rejection is marked handled.
// A panic in fn rejects the derived Future.
func Catch[T any](f *Future[T], fn func(error) T) *Future[T] {
	out := NewFuture[T](f.ex)
	f.handled = true
	f.register(out.Resolve, func(reason error) {
		defer func() {
			if r := recover(); r != nil {
				out.Reject(fmt.Errorf("await: continuation panic: %v", r))
			}
		}()
		out.Resolve(fn(reason))
	})
	return out
}
