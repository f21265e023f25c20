// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package await

import (
	"code.hybscloud.com/kont"
)

// Yield is the effect operation emitting Value at a suspension point.
// The driver normalizes Value and answers with its settled outcome:
// Right carries the fulfillment, Left the rejection to inject.
type Yield struct {
	kont.Phantom[kont.Either[error, kont.Resumed]]
	Value kont.Resumed
}

// Throw is the effect operation failing the coroutine with Err.
// A Throw suspension is terminal: the driver discards it and relays
// Err to the enclosing delegation frame, or rejects its own Future.
type Throw struct {
	kont.Phantom[struct{}]
	Err error
}

// Deleg is the effect operation transferring suspension control to
// Body until it completes. Body may be a *Coro[kont.Resumed], a
// kont.Eff[kont.Resumed], a kont.Expr[kont.Resumed], or an
// iter.Seq[kont.Resumed]. The answer carries the body's terminal
// outcome on the same Either channel as Yield.
type Deleg struct {
	kont.Phantom[kont.Either[error, kont.Resumed]]
	Body kont.Resumed
}
