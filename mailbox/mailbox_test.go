// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"context"
	"testing"

	"code.hybscloud.com/remoteactor/mailbox"
)

func TestMailboxSendAndCall(t *testing.T) {
	sum := 0
	mb := mailbox.NewMailbox[int, int]("sum", 8, func(ctx context.Context, msg int) (int, error) {
		sum += msg
		return sum, nil
	})
	defer mb.Close()

	addr := mb.Addr()
	ctx := context.Background()

	if err := addr.Send(ctx, 5); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := addr.Send(ctx, 5); err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := addr.Call(ctx, 0)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestMailboxCloseRejectsNewMessages(t *testing.T) {
	mb := mailbox.NewMailbox[int, int]("", 1, func(ctx context.Context, msg int) (int, error) {
		return msg, nil
	})
	addr := mb.Addr()
	mb.Close()

	if _, err := addr.Call(context.Background(), 1); err != mailbox.ErrMailboxClosed {
		t.Fatalf("expected ErrMailboxClosed, got %v", err)
	}
}

func TestMailboxCloneSharesTarget(t *testing.T) {
	mb := mailbox.NewMailbox[int, int]("x", 1, func(ctx context.Context, msg int) (int, error) {
		return msg * 2, nil
	})
	defer mb.Close()

	clone := mb.Addr().Clone()
	got, err := clone.Call(context.Background(), 21)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if clone.ID() != mb.Addr().ID() {
		t.Fatalf("clone should share the target's id")
	}
}
