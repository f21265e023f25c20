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

func TestNormalizeFuturePassthrough(t *testing.T) {
	ex := await.New()
	f := await.NewFuture[kont.Resumed](ex)

	if got := await.Normalize(ex, f); got != f {
		t.Fatal("expected identity on *Future[kont.Resumed]")
	}
}

func TestNormalizeTypedFuture(t *testing.T) {
	// A Future of any other type normalizes through its own
	// dual-callback capability.
	ex := await.New()
	f := await.Resolved(ex, 42)

	n := await.Normalize(ex, f)
	got := mustFulfill(t, n)
	if got != kont.Resumed(42) {
		t.Fatalf("value got %v, want 42", got)
	}
}

func TestNormalizeCompleter(t *testing.T) {
	ex := await.New()

	n := await.Normalize(ex, completer{fulfillWith: "hi"})
	got := mustFulfill(t, n)
	if got != kont.Resumed("hi") {
		t.Fatalf("value got %v, want %q", got, "hi")
	}
}

func TestNormalizeCompleterRejection(t *testing.T) {
	ex := await.New()
	boom := errors.New("boom")

	n := await.Normalize(ex, completer{rejectWith: boom})
	err := mustReject(t, n)
	if !errors.Is(err, boom) {
		t.Fatalf("reason got %v, want %v", err, boom)
	}
}

func TestNormalizeThunk(t *testing.T) {
	ex := await.New()

	thunk := await.Thunk(func(done func(err error, v kont.Resumed)) {
		done(nil, 7)
	})
	n := await.Normalize(ex, thunk)
	got := mustFulfill(t, n)
	if got != kont.Resumed(7) {
		t.Fatalf("value got %v, want 7", got)
	}
}

func TestNormalizeRawThunk(t *testing.T) {
	// The raw unnamed func type is recognized too.
	ex := await.New()

	raw := func(done func(err error, v kont.Resumed)) {
		done(nil, "raw")
	}
	n := await.Normalize(ex, raw)
	got := mustFulfill(t, n)
	if got != kont.Resumed("raw") {
		t.Fatalf("value got %v, want %q", got, "raw")
	}
}

func TestNormalizeThunkErrorFirst(t *testing.T) {
	ex := await.New()
	boom := errors.New("boom")

	thunk := await.Thunk(func(done func(err error, v kont.Resumed)) {
		done(boom, nil)
	})
	err := mustReject(t, await.Normalize(ex, thunk))
	if !errors.Is(err, boom) {
		t.Fatalf("reason got %v, want %v", err, boom)
	}
}

func TestNormalizeImmediate(t *testing.T) {
	ex := await.New()

	n := await.Normalize(ex, 123)
	if !n.Settled() {
		t.Fatal("immediate value should normalize to a settled Future")
	}
	got := mustFulfill(t, n)
	if got != kont.Resumed(123) {
		t.Fatalf("value got %v, want 123", got)
	}
}

func TestNormalizeRegistrationPanicRejects(t *testing.T) {
	// A synchronous panic out of the registration operation becomes a
	// rejection, never an escaping panic.
	ex := await.New()

	n := await.Normalize(ex, panicky{})
	err := mustReject(t, n)
	if err == nil {
		t.Fatal("expected rejection from panicking registration")
	}
}
