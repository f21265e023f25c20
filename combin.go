// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"errors"
	"time"

	"code.hybscloud.com/kont"
)

// ErrTimeout is the rejection reason produced by [Timeout].
var ErrTimeout = errors.New("await: timeout")

// Gate resolves once every member settles successfully, with results
// in member order, and rejects with the first rejection immediately,
// without waiting for the rest. The remaining members stay observed:
// their later settlements neither change the result nor surface as
// unhandled rejections.
//
// Gate over no members resolves immediately with an empty slice.
// A nil member is a construction failure and panics.
func Gate(ex *Executor, members ...kont.Resumed) *Future[[]kont.Resumed] {
	for _, m := range members {
		if m == nil {
			panic("await: nil member in Gate")
		}
	}
	out := NewFuture[[]kont.Resumed](ex)
	results := make([]kont.Resumed, len(members))
	if len(members) == 0 {
		out.Resolve(results)
		return out
	}
	remaining := len(members)
	for i, m := range members {
		f := Normalize(ex, m)
		f.handled = true
		f.register(func(v kont.Resumed) {
			results[i] = v
			remaining--
			if remaining == 0 {
				out.Resolve(results)
			}
		}, out.Reject)
	}
	return out
}

// Latch settles with the first member settlement, of either outcome.
// The remaining members stay observed but cannot affect the result.
//
// Latch over no members is a construction failure and panics: it
// could never settle. A nil member panics likewise.
func Latch(ex *Executor, members ...kont.Resumed) *Future[kont.Resumed] {
	if len(members) == 0 {
		panic("await: Latch requires at least one member")
	}
	for _, m := range members {
		if m == nil {
			panic("await: nil member in Latch")
		}
	}
	out := NewFuture[kont.Resumed](ex)
	for _, m := range members {
		f := Normalize(ex, m)
		f.handled = true
		f.register(out.Resolve, out.Reject)
	}
	return out
}

// Timeout latches v against a timer: the result settles with v's
// outcome if it arrives within d and rejects with ErrTimeout
// otherwise. The loser stays observed, so a late settlement neither
// wins nor surfaces as an unhandled rejection.
func Timeout(ex *Executor, v kont.Resumed, d time.Duration) *Future[kont.Resumed] {
	deadline := ThenFlat(After(ex, d), func(time.Time) kont.Resumed {
		return Rejected[kont.Resumed](ex, ErrTimeout)
	})
	return Latch(ex, v, deadline)
}
