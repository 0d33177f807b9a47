// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer_test

import (
	"context"
	"net"
	"testing"
	"time"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/peer"
	"code.hybscloud.com/remoteactor/svcmap"
)

func newPipePeer(t *testing.T, conn net.Conn, name string, opts ...peer.Option) *peer.Peer {
	t.Helper()
	p := peer.New(conn, conn, name, opts...)
	t.Cleanup(func() { p.Close(peer.CloseConnection{Reason: "test cleanup"}) })
	return p
}

func newPipePeers(t *testing.T, clientOpts, serverOpts []peer.Option) (client, server *peer.Peer) {
	t.Helper()
	c1, c2 := net.Pipe()
	client = newPipePeer(t, c1, "client", clientOpts...)
	server = newPipePeer(t, c2, "server", serverOpts...)
	return client, server
}

func awaitEvent(t *testing.T, obs *peer.Observer, kind peer.EventKind, within time.Duration) peer.Event {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case ev, ok := <-obs.Events:
			if !ok {
				t.Fatalf("observer channel closed before seeing %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %v", kind)
		}
	}
}

func TestPeerCloseBroadcastsClosed(t *testing.T) {
	client, _ := newPipePeers(t, nil, nil)
	obs, cancel := client.Observe(4)
	defer cancel()

	client.Close(peer.CloseConnection{Reason: "bye"})
	ev := awaitEvent(t, obs, peer.EventClosed, time.Second)
	if ev.Reason != "bye" {
		t.Fatalf("reason = %q, want %q", ev.Reason, "bye")
	}

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() never closed")
	}
}

func TestPeerCloseIsIdempotent(t *testing.T) {
	client, _ := newPipePeers(t, nil, nil)
	client.Close(peer.CloseConnection{Reason: "first"})
	client.Close(peer.CloseConnection{Reason: "second"})
	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() never closed")
	}
}

func TestPeerSendAndCallRoundTrip(t *testing.T) {
	client, server := newPipePeers(t, nil, nil)

	sm := svcmap.NewLocalServiceMap(nil)
	mb := mailbox.NewMailbox[string, string]("echo", 4, func(_ context.Context, msg string) (string, error) {
		return "echo:" + msg, nil
	})
	t.Cleanup(mb.Close)
	sid := svcmap.Register[string, string](sm, "test", mb.Addr())
	server.RegisterServices(sm)

	addr := peer.NewRemoteAddress[string, string](client, sid, nil)
	got, err := addr.Call(context.Background(), "hi")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "echo:hi" {
		t.Fatalf("got %q", got)
	}
}

func TestPeerSendIsFireAndForget(t *testing.T) {
	client, server := newPipePeers(t, nil, nil)

	received := make(chan string, 1)
	sm := svcmap.NewLocalServiceMap(nil)
	mb := mailbox.NewMailbox[string, struct{}]("notify", 4, func(_ context.Context, msg string) (struct{}, error) {
		received <- msg
		return struct{}{}, nil
	})
	t.Cleanup(mb.Close)
	sid := svcmap.Register[string, struct{}](sm, "test", mb.Addr())
	server.RegisterServices(sm)

	addr := peer.NewRemoteAddress[string, struct{}](client, sid, nil)
	if err := addr.Send(context.Background(), "fyi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-received:
		if msg != "fyi" {
			t.Fatalf("msg = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never received the send")
	}
}

func TestPeerAddrNilAfterClose(t *testing.T) {
	client, _ := newPipePeers(t, nil, nil)
	if client.Addr() == nil {
		t.Fatal("Addr() should be non-nil before close")
	}
	client.Close(peer.CloseConnection{Reason: "done"})
	<-client.Done()
	if client.Addr() != nil {
		t.Fatal("Addr() should be nil after close")
	}
}
