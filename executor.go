// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"code.hybscloud.com/lfq"
)

// ringCapacity is the bounded capacity of the deferred-job ring.
// 64 absorbs a typical settlement burst; overflow spills to a slice
// so Defer never fails and never blocks.
const ringCapacity = 64

// watched is the executor-side view of a Future with registered
// continuations awaiting settlement delivery.
type watched interface {
	// fire delivers a settled outcome to registered continuations as
	// deferred jobs. Reports false while still pending.
	fire(ex *Executor) bool
}

// orphanDisposition classifies a tracked Future during the
// unhandled-rejection scan at flush quiescence.
type orphanDisposition uint8

const (
	orphanKeep   orphanDisposition = iota // pending, scan again later
	orphanDrop                            // fulfilled, handled, or already reported
	orphanReport                          // rejected with no handler in sight
)

// orphaned is the executor-side view of a Future whose rejection may
// go unhandled.
type orphaned interface {
	orphanScan() (error, orphanDisposition)
}

// An Executor is a single-goroutine run-to-completion job loop: the
// one logical thread of control that coroutine drivers, future
// continuations, and timers share. A job runs without interruption;
// interleaving happens only between jobs.
//
// The Executor and every construction API in this package are confined
// to the owning goroutine. Only Future settlement may cross
// goroutines.
type Executor struct {
	ring  lfq.SPSC[func()]
	spill []func()

	watches []watched
	timers  timerQueue

	orphans     []orphaned
	onUnhandled func(reason error)
	unhandled   []error
}

// New creates an Executor with an empty job queue.
func New() *Executor {
	ex := &Executor{}
	ex.ring.Init(ringCapacity)
	return ex
}

// Defer queues job to run on a later turn, after the current
// synchronous step completes. Jobs run in Defer order.
func (ex *Executor) Defer(job func()) {
	if len(ex.spill) == 0 {
		if err := ex.ring.Enqueue(&job); err == nil {
			return
		}
	}
	// Ring full: spill keeps FIFO order because new jobs keep
	// spilling until the spill drains.
	ex.spill = append(ex.spill, job)
}

// turn runs a single deferred job. Reports whether one ran.
func (ex *Executor) turn() bool {
	if job, err := ex.ring.Dequeue(); err == nil {
		job()
		return true
	}
	if len(ex.spill) > 0 {
		job := ex.spill[0]
		ex.spill[0] = nil
		ex.spill = ex.spill[1:]
		if len(ex.spill) == 0 {
			ex.spill = nil
		}
		job()
		return true
	}
	return false
}

// poll delivers expired timers and settled watches. Reports progress.
// Settlement callbacks are deferred, not run inline, so delivery order
// stays registration order regardless of when settlement happened.
func (ex *Executor) poll() bool {
	progress := ex.timers.expire()
	kept := ex.watches[:0]
	for _, w := range ex.watches {
		if w.fire(ex) {
			progress = true
		} else {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(ex.watches); i++ {
		ex.watches[i] = nil
	}
	ex.watches = kept
	return progress
}

// Flush runs deferred jobs and delivers settlements until quiescent:
// no runnable job, no deliverable settlement. Unhandled rejections are
// reported at quiescence. Reports whether anything ran.
func (ex *Executor) Flush() bool {
	ran := false
	for {
		progress := false
		for ex.turn() {
			progress = true
		}
		if ex.poll() {
			progress = true
		}
		if !progress {
			break
		}
		ran = true
	}
	ex.reportOrphans()
	return ran
}

// watch registers a pending Future for settlement polling.
func (ex *Executor) watch(w watched) {
	ex.watches = append(ex.watches, w)
}

// enroll tracks a Future for the unhandled-rejection scan.
func (ex *Executor) enroll(o orphaned) {
	ex.orphans = append(ex.orphans, o)
}

// reportOrphans surfaces rejections that reached flush quiescence with
// no rejection handler registered. A handler attached before
// quiescence rescues the rejection; each one is reported at most once.
func (ex *Executor) reportOrphans() {
	if len(ex.orphans) == 0 {
		return
	}
	kept := ex.orphans[:0]
	for _, o := range ex.orphans {
		reason, d := o.orphanScan()
		switch d {
		case orphanKeep:
			kept = append(kept, o)
		case orphanReport:
			if ex.onUnhandled != nil {
				ex.onUnhandled(reason)
			} else {
				ex.unhandled = append(ex.unhandled, reason)
			}
		}
	}
	for i := len(kept); i < len(ex.orphans); i++ {
		ex.orphans[i] = nil
	}
	ex.orphans = kept
}

// OnUnhandledRejection installs the unhandled-rejection policy.
// Passing nil restores the default accumulating policy, whose
// collected reasons are drained by Unhandled.
func (ex *Executor) OnUnhandledRejection(fn func(reason error)) {
	ex.onUnhandled = fn
}

// Unhandled drains the rejections collected by the default policy.
func (ex *Executor) Unhandled() []error {
	u := ex.unhandled
	ex.unhandled = nil
	return u
}
