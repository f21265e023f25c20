// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"sort"
	"time"
)

// timer is one armed deadline and the Future it fulfills.
type timer struct {
	at  time.Time
	fut *Future[time.Time]
}

// timerQueue keeps timers sorted by deadline, earliest first.
// Sorted insert over a plain slice; an executor's armed timer count
// stays small.
type timerQueue struct {
	items []timer
}

func (q *timerQueue) add(t timer) {
	i := sort.Search(len(q.items), func(i int) bool {
		return q.items[i].at.After(t.at)
	})
	q.items = append(q.items, timer{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = t
}

// expire fulfills every timer whose deadline has passed.
// Reports whether any fired.
func (q *timerQueue) expire() bool {
	if len(q.items) == 0 {
		return false
	}
	now := time.Now()
	n := 0
	for n < len(q.items) && !q.items[n].at.After(now) {
		n++
	}
	if n == 0 {
		return false
	}
	expired := make([]timer, n)
	copy(expired, q.items[:n])
	m := copy(q.items, q.items[n:])
	for i := m; i < len(q.items); i++ {
		q.items[i] = timer{}
	}
	q.items = q.items[:m]
	for _, t := range expired {
		t.fut.Resolve(now)
	}
	return true
}

// After returns a Future fulfilled with the fire time once d has
// elapsed. Timers are checked by executor polling, so resolution
// granularity is bounded by flush latency, not by a runtime timer.
func After(ex *Executor, d time.Duration) *Future[time.Time] {
	fut := NewFuture[time.Time](ex)
	ex.timers.add(timer{at: time.Now().Add(d), fut: fut})
	return fut
}
