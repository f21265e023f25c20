// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package await drives suspendable computations ("coroutines") to
// completion by resuming them with the settled outcomes of the
// asynchronous values they emit, built on the delimited continuations
// of [code.hybscloud.com/kont].
//
// A coroutine emits a value at each suspension point; the driver
// normalizes the value into a [Future], waits for it to settle, and
// resumes the coroutine with the fulfillment or injects the rejection.
// Heterogeneous result carriers — futures, dual-callback objects,
// error-first thunks, or plain immediate values — all normalize into
// the single resumption protocol.
//
// # Architecture
//
//   - Futures: [Future] is a single-settlement container; first
//     settlement wins, terminal states are immutable and re-observable.
//     Continuations run as deferred [Executor] jobs, never on the
//     settling stack.
//   - Executor: a single-goroutine run-to-completion job loop backed by
//     a bounded lock-free ring from [code.hybscloud.com/lfq]. Blocking
//     waits back off via [code.hybscloud.com/iox.Backoff]; settlement
//     is lock-free via [code.hybscloud.com/atomix] and may cross
//     goroutines, everything else is confined to the executor's
//     goroutine.
//   - Normalizer: [Normalize] matches a value against the awaitable
//     capability shapes — [Completer] (dual-callback registration) and
//     [Thunk] (error-first deferred call) — and falls back to an
//     already-fulfilled Future.
//   - Coroutines: bodies are kont effect computations built from
//     [YieldBind], [YieldTry], [DelegBind], [Fail], and [Loop];
//     [Coro] wraps stepping into the Start/Resume/ResumeError contract.
//     Errors travel the same channel as values, as
//     [code.hybscloud.com/kont.Either] resumption messages.
//   - Driver: [Run] exposes a coroutine's final result as a Future,
//     relaying delegation frames transparently; the driver's Future is
//     itself awaitable.
//   - Coordination: [Group] advances multiple driver sessions by
//     explicit [Group.Step] calls — the call order is the concurrency
//     schedule, making interleavings reproducible. [Gate], [Latch],
//     [Timeout], and [After] combine and bound awaitables.
//
// # Example
//
//	ex := await.New()
//	body := await.YieldBind(7, func(v kont.Resumed) kont.Eff[int] {
//		return kont.Pure(v.(int) * 2)
//	})
//	result, err := await.Exec(ex, await.NewCoro(body))
//	// result == 14, err == nil
package await
