// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/await"
	"code.hybscloud.com/kont"
)

func TestCoroLifecycle(t *testing.T) {
	body := await.YieldBind(7, func(v kont.Resumed) kont.Eff[int] {
		return kont.Pure(v.(int) * 2)
	})
	c := await.NewCoro(body)

	if c.State() != await.NotStarted {
		t.Fatalf("state got %v, want NotStarted", c.State())
	}
	if st := c.Start(); st != await.Suspended {
		t.Fatalf("state after start got %v, want Suspended", st)
	}
	if got := c.Emitted(); got != kont.Resumed(7) {
		t.Fatalf("emitted got %v, want 7", got)
	}
	if st := c.Resume(10); st != await.Completed {
		t.Fatalf("state after resume got %v, want Completed", st)
	}
	result, err := c.Result()
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if result != 20 {
		t.Fatalf("result got %d, want 20", result)
	}
}

func TestCoroResumeErrorRecovery(t *testing.T) {
	// An injected failure is caught at a YieldTry and converted back
	// into a regular completion.
	body := await.YieldTry(1,
		func(v kont.Resumed) kont.Eff[string] {
			return kont.Pure("value")
		},
		func(err error) kont.Eff[string] {
			return kont.Pure("caught: " + err.Error())
		},
	)
	c := await.NewCoro(body)

	c.Start()
	if st := c.ResumeError(errors.New("injected")); st != await.Completed {
		t.Fatalf("state got %v, want Completed", st)
	}
	result, _ := c.Result()
	if result != "caught: injected" {
		t.Fatalf("result got %q, want %q", result, "caught: injected")
	}
}

func TestCoroResumeErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	body := await.YieldBind(1, func(v kont.Resumed) kont.Eff[int] {
		return kont.Pure(0)
	})
	c := await.NewCoro(body)

	c.Start()
	if st := c.ResumeError(boom); st != await.Failed {
		t.Fatalf("state got %v, want Failed", st)
	}
	_, err := c.Result()
	if !errors.Is(err, boom) {
		t.Fatalf("failure got %v, want %v", err, boom)
	}
}

func TestCoroNPlusOneResumptions(t *testing.T) {
	// A run reaching N suspension points takes exactly N+1 calls:
	// one Start plus N resumptions.
	const n = 3
	body := await.YieldBind(1, func(a kont.Resumed) kont.Eff[int] {
		return await.YieldBind(2, func(b kont.Resumed) kont.Eff[int] {
			return await.YieldBind(3, func(c kont.Resumed) kont.Eff[int] {
				return kont.Pure(a.(int) + b.(int) + c.(int))
			})
		})
	})
	c := await.NewCoro(body)

	calls := 1
	st := c.Start()
	for st == await.Suspended {
		st = c.Resume(c.Emitted())
		calls++
	}

	if calls != n+1 {
		t.Fatalf("resumption calls got %d, want %d", calls, n+1)
	}
	result, err := c.Result()
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if result != 6 {
		t.Fatalf("result got %d, want 6", result)
	}
}

func TestCoroDoubleStartPanics(t *testing.T) {
	c := await.NewCoro(kont.Pure(1))
	c.Start()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on double start")
		}
		msg, ok := r.(string)
		if !ok || msg != "await: coroutine already started" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	c.Start()
}

func TestCoroResumeBeforeStartPanics(t *testing.T) {
	c := await.NewCoro(kont.Pure(1))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on resume before start")
		}
		msg, ok := r.(string)
		if !ok || msg != "await: coroutine not suspended" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	c.Resume(nil)
}

func TestCoroUnhandledEffectPanics(t *testing.T) {
	type bogus struct{ kont.Phantom[int] }
	c := await.NewCoro(kont.Bind(kont.Perform(bogus{}), func(int) kont.Eff[int] {
		return kont.Pure(0)
	}))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for unhandled effect")
		}
		msg, ok := r.(string)
		if !ok || msg != "await: unhandled effect in coroutine" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	c.Start()
}

func TestCoroDiscard(t *testing.T) {
	c := await.NewCoro(await.YieldBind(1, func(kont.Resumed) kont.Eff[int] {
		return kont.Pure(0)
	}))
	c.Start()
	c.Discard()

	if c.State() != await.Failed {
		t.Fatalf("state got %v, want Failed", c.State())
	}
	_, err := c.Result()
	if !errors.Is(err, await.ErrDiscarded) {
		t.Fatalf("failure got %v, want ErrDiscarded", err)
	}

	// Discarding a terminal coroutine is a no-op.
	c.Discard()
}

func TestCoroYieldThen(t *testing.T) {
	// YieldThen discards the injected resumption and continues with
	// the fixed next computation.
	c := await.NewCoro(await.YieldThen(5, kont.Pure("next")))

	if st := c.Start(); st != await.Suspended {
		t.Fatalf("state after start got %v, want Suspended", st)
	}
	if got := c.Emitted(); got != kont.Resumed(5) {
		t.Fatalf("emitted got %v, want 5", got)
	}
	if st := c.Resume("ignored"); st != await.Completed {
		t.Fatalf("state after resume got %v, want Completed", st)
	}
	result, err := c.Result()
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if result != "next" {
		t.Fatalf("result got %q, want %q", result, "next")
	}
}

func TestCoroLoopBody(t *testing.T) {
	// Iterative body built with the Loop combinator: emit each
	// element, accumulate the injected resumptions.
	body := await.Loop([2]int{0, 0}, func(s [2]int) kont.Eff[kont.Either[[2]int, int]] {
		i, sum := s[0], s[1]
		if i == 4 {
			return kont.Pure(kont.Right[[2]int, int](sum))
		}
		return await.YieldBind(i, func(v kont.Resumed) kont.Eff[kont.Either[[2]int, int]] {
			return kont.Pure(kont.Left[[2]int, int]([2]int{i + 1, sum + v.(int)}))
		})
	})
	c := await.NewCoro(body)

	st := c.Start()
	for st == await.Suspended {
		st = c.Resume(c.Emitted().(int) * 10)
	}
	result, err := c.Result()
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if result != 60 {
		t.Fatalf("result got %d, want 60", result)
	}
}
