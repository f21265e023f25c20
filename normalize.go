// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Completer is the dual-callback registration capability: a value that
// completes later calls fulfill with its result or reject with its
// failure. Callbacks may arrive from any goroutine; invoking either
// callback more than once is harmless, first settlement wins.
//
// The capability is an explicit interface rather than a structural
// probe so unrelated values with a similarly named method cannot
// masquerade as awaitable.
type Completer interface {
	OnComplete(fulfill func(v kont.Resumed), reject func(err error))
}

// Thunk is the single-callback deferred-call capability, error-first:
// the thunk performs its work and invokes done exactly once, with the
// error in the first position.
type Thunk func(done func(err error, v kont.Resumed))

// Normalize converts an arbitrary emitted value into a Future.
// A *Future[kont.Resumed] passes through unchanged; a [Completer] or
// [Thunk] (named or raw) is wrapped; anything else becomes an
// already-fulfilled Future of the value itself.
//
// A synchronous panic out of a capability registration rejects the
// produced Future instead of escaping to the caller.
func Normalize(ex *Executor, v kont.Resumed) *Future[kont.Resumed] {
	if f, ok := asAwaitable(ex, v); ok {
		return f
	}
	return Resolved(ex, v)
}

// asAwaitable matches v against the recognized awaitable shapes.
func asAwaitable(ex *Executor, v kont.Resumed) (*Future[kont.Resumed], bool) {
	switch v := v.(type) {
	case *Future[kont.Resumed]:
		return v, true
	case Completer:
		f := NewFuture[kont.Resumed](ex)
		pin(f, func() { v.OnComplete(f.Resolve, f.Reject) })
		return f, true
	case Thunk:
		return fromThunk(ex, v), true
	case func(done func(err error, v kont.Resumed)):
		return fromThunk(ex, v), true
	}
	return nil, false
}

// fromThunk invokes an error-first thunk, mapping its completion onto
// a fresh Future.
func fromThunk(ex *Executor, call Thunk) *Future[kont.Resumed] {
	f := NewFuture[kont.Resumed](ex)
	pin(f, func() {
		call(func(err error, v kont.Resumed) {
			if err != nil {
				f.Reject(err)
				return
			}
			f.Resolve(v)
		})
	})
	return f
}

// pin invokes a capability registration, converting a synchronous
// panic into a rejection of f.
func pin(f *Future[kont.Resumed], register func()) {
	defer func() {
		if r := recover(); r != nil {
			f.Reject(fmt.Errorf("await: awaitable registration panic: %v", r))
		}
	}()
	register()
}
