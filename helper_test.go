// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await_test

import (
	"testing"

	"code.hybscloud.com/await"
	"code.hybscloud.com/kont"
)

// completer is a test double for the dual-callback awaitable shape.
// Settlement is replayed to every registration, like a settled Future.
type completer struct {
	fulfillWith kont.Resumed
	rejectWith  error
}

func (c completer) OnComplete(fulfill func(v kont.Resumed), reject func(err error)) {
	if c.rejectWith != nil {
		reject(c.rejectWith)
		return
	}
	fulfill(c.fulfillWith)
}

// panicky is an awaitable whose registration panics synchronously.
type panicky struct{}

func (panicky) OnComplete(func(v kont.Resumed), func(err error)) {
	panic("registration exploded")
}

// mustFulfill waits for f and fails the test on rejection.
func mustFulfill[T any](t *testing.T, f *await.Future[T]) T {
	t.Helper()
	v, err := f.Wait()
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	return v
}

// mustReject waits for f and fails the test on fulfillment.
func mustReject[T any](t *testing.T, f *await.Future[T]) error {
	t.Helper()
	_, err := f.Wait()
	if err == nil {
		t.Fatal("expected rejection, got fulfillment")
	}
	return err
}
