// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handler processes one message delivered to a Mailbox. For a Send, the
// returned R is discarded; for a Call, it becomes the caller's result.
type Handler[M any, R any] func(ctx context.Context, msg M) (R, error)

var nextMailboxID uint64

type envelope[M any, R any] struct {
	ctx    context.Context
	msg    M
	result chan<- result[R] // nil for a Send
}

type result[R any] struct {
	val R
	err error
}

// Mailbox is a minimal in-process actor: a single goroutine draining a
// buffered channel, running Handler for every delivered message. It is the
// concrete, swappable default for the mailbox.Address interface the rest
// of this module depends on.
type Mailbox[M any, R any] struct {
	id      uint64
	name    string
	hasName bool

	mu     sync.RWMutex
	in     chan envelope[M, R]
	closed chan struct{}
	isShut bool
}

// NewMailbox starts a Mailbox actor backed by handler, with an inbox of the
// given buffer size. An empty name leaves Name() reporting "not set".
func NewMailbox[M any, R any](name string, bufSize int, handler Handler[M, R]) *Mailbox[M, R] {
	mb := &Mailbox[M, R]{
		id:      atomic.AddUint64(&nextMailboxID, 1),
		name:    name,
		hasName: name != "",
		in:      make(chan envelope[M, R], bufSize),
		closed:  make(chan struct{}),
	}
	go mb.run(handler)
	return mb
}

func (mb *Mailbox[M, R]) run(handler Handler[M, R]) {
	for env := range mb.in {
		val, err := handler(env.ctx, env.msg)
		if env.result != nil {
			env.result <- result[R]{val: val, err: err}
		}
	}
	close(mb.closed)
}

// Close stops accepting new messages and waits for in-flight ones already
// enqueued to finish processing. The write lock held here excludes every
// in-flight Send/Call, so closing mb.in can never race a concurrent send on
// it (which would otherwise panic).
func (mb *Mailbox[M, R]) Close() {
	mb.mu.Lock()
	alreadyShut := mb.isShut
	if !alreadyShut {
		mb.isShut = true
		close(mb.in)
	}
	mb.mu.Unlock()
	<-mb.closed
}

// Addr returns a cloneable Address handle to this mailbox.
func (mb *Mailbox[M, R]) Addr() Address[M, R] {
	return mailboxAddr[M, R]{mb: mb}
}

type mailboxAddr[M any, R any] struct {
	mb *Mailbox[M, R]
}

func (a mailboxAddr[M, R]) Send(ctx context.Context, msg M) error {
	a.mb.mu.RLock()
	defer a.mb.mu.RUnlock()
	if a.mb.isShut {
		return ErrMailboxClosed
	}
	select {
	case a.mb.in <- envelope[M, R]{ctx: ctx, msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a mailboxAddr[M, R]) Call(ctx context.Context, msg M) (R, error) {
	var zero R

	a.mb.mu.RLock()
	if a.mb.isShut {
		a.mb.mu.RUnlock()
		return zero, ErrMailboxClosed
	}
	resCh := make(chan result[R], 1)
	select {
	case a.mb.in <- envelope[M, R]{ctx: ctx, msg: msg, result: resCh}:
		a.mb.mu.RUnlock()
	case <-ctx.Done():
		a.mb.mu.RUnlock()
		return zero, ctx.Err()
	}

	select {
	case r := <-resCh:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-a.mb.closed:
		return zero, ErrMailboxClosed
	}
}

func (a mailboxAddr[M, R]) ID() uint64 { return a.mb.id }

func (a mailboxAddr[M, R]) Name() (string, bool) { return a.mb.name, a.mb.hasName }

func (a mailboxAddr[M, R]) Clone() Address[M, R] { return a }
