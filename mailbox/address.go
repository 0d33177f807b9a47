// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"errors"
)

// ErrMailboxClosed is returned by Send/Call when the target actor's
// mailbox is no longer accepting messages.
var ErrMailboxClosed = errors.New("mailbox: closed")

// Address is a cloneable, typed handle to an actor that accepts messages of
// type M and, for calls, produces a result of type R. It is the one
// external collaborator the peer and service-map packages require: they
// never reach into an actor's internals, only through this interface.
type Address[M any, R any] interface {
	// Send delivers msg without waiting for a result (fire-and-forget).
	Send(ctx context.Context, msg M) error

	// Call delivers msg and waits for the actor to produce a result.
	Call(ctx context.Context, msg M) (R, error)

	// ID returns a process-unique identifier for the target actor.
	ID() uint64

	// Name returns a human-readable name, if one was assigned.
	Name() (string, bool)

	// Clone returns a cheap, independent handle to the same actor.
	Clone() Address[M, R]
}
