// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"code.hybscloud.com/kont"
)

// YieldTry emits v, then branches on the injected outcome: onValue for
// a fulfillment, onError for a rejection. This is the recovery site —
// the coroutine may emit a new value, fail again, or complete.
// Fuses Perform(Yield) + Bind + Either branch.
func YieldTry[B any](v kont.Resumed, onValue func(kont.Resumed) kont.Eff[B], onError func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Yield{Value: v}), func(e kont.Either[error, kont.Resumed]) kont.Eff[B] {
		if reason, ok := e.GetLeft(); ok {
			return onError(reason)
		}
		r, _ := e.GetRight()
		return onValue(r)
	})
}

// YieldBind emits v and passes the fulfillment to f.
// An injected rejection propagates as the coroutine's failure.
// Fuses Perform(Yield) + Bind.
func YieldBind[B any](v kont.Resumed, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return YieldTry(v, f, Fail[B])
}

// YieldThen emits v, discards the fulfillment, and continues with
// next. Fuses Perform(Yield) + Then.
func YieldThen[B any](v kont.Resumed, next kont.Eff[B]) kont.Eff[B] {
	return YieldBind(v, func(kont.Resumed) kont.Eff[B] { return next })
}

// Fail fails the coroutine with reason. The continuation past a Throw
// is unreachable: the driver discards the suspension without resuming.
func Fail[B any](reason error) kont.Eff[B] {
	return kont.Bind(kont.Perform(Throw{Err: reason}), func(struct{}) kont.Eff[B] {
		panic("await: resumed past Throw")
	})
}

// DelegTry delegates to body, then branches on its terminal outcome:
// onValue for completion, onError for an unrecovered failure.
// Fuses Perform(Deleg) + Bind + Either branch.
func DelegTry[B any](body kont.Resumed, onValue func(kont.Resumed) kont.Eff[B], onError func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Deleg{Body: body}), func(e kont.Either[error, kont.Resumed]) kont.Eff[B] {
		if reason, ok := e.GetLeft(); ok {
			return onError(reason)
		}
		r, _ := e.GetRight()
		return onValue(r)
	})
}

// DelegBind delegates to body and passes its result to f.
// A failure of the body propagates as this coroutine's failure.
// Fuses Perform(Deleg) + Bind.
func DelegBind[B any](body kont.Resumed, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return DelegTry(body, f, Fail[B])
}

// DelegThen delegates to body, discards its result, and continues
// with next. Fuses Perform(Deleg) + Then.
func DelegThen[B any](body kont.Resumed, next kont.Eff[B]) kont.Eff[B] {
	return DelegBind(body, func(kont.Resumed) kont.Eff[B] { return next })
}

// Loop runs an iterative coroutine body.
// step returns Left(nextState) to continue or Right(result) to finish.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return Loop(left, step)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}
