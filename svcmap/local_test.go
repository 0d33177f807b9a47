// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package svcmap_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/svcmap"
	"code.hybscloud.com/remoteactor/wire"
)

type echoRequest struct {
	Text string `cbor:"text"`
}

type echoResponse struct {
	Text string `cbor:"text"`
}

func newEchoAddr(t *testing.T) mailbox.Address[echoRequest, echoResponse] {
	t.Helper()
	mb := mailbox.NewMailbox[echoRequest, echoResponse]("echo", 4, func(_ context.Context, msg echoRequest) (echoResponse, error) {
		return echoResponse{Text: msg.Text}, nil
	})
	t.Cleanup(mb.Close)
	return mb.Addr()
}

func TestLocalServiceMapCallRoundTrip(t *testing.T) {
	sm := svcmap.NewLocalServiceMap(svcmap.CBORCodec{})
	sid := svcmap.Register[echoRequest, echoResponse](sm, "test", newEchoAddr(t))

	codec := svcmap.CBORCodec{}
	payload, err := codec.Marshal(echoRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cid := wire.NewConnID()
	req := wire.NewFrame(len(payload))
	req.SetSID(sid).SetCID(cid).AppendPayload(payload)

	fut, err := sm.CallService(context.Background(), req, svcmap.CallContext{})
	if err != nil {
		t.Fatalf("CallService: %v", err)
	}
	select {
	case res := <-fut:
		if res.Err != nil {
			t.Fatalf("unexpected err: %v", res.Err)
		}
		if res.Response.Kind != svcmap.ResponseCallResponse {
			t.Fatalf("kind = %v", res.Response.Kind)
		}
		var out echoResponse
		if err := codec.Unmarshal(res.Response.Frame.Payload(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.Text != "hello" {
			t.Fatalf("text = %q", out.Text)
		}
		if res.Response.Frame.CID() != cid {
			t.Fatal("response must echo request cid")
		}
		if !res.Response.Frame.SID().IsFull() {
			t.Fatal("response sid must be FULL")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestLocalServiceMapUnknownService(t *testing.T) {
	sm := svcmap.NewLocalServiceMap(nil)
	f := wire.NewFrame(0)
	f.SetSID(wire.ServiceID{9, 9}).SetCID(wire.NewConnID())
	if _, err := sm.CallService(context.Background(), f, svcmap.CallContext{}); err != svcmap.ErrUnknownService {
		t.Fatalf("err = %v, want ErrUnknownService", err)
	}
}

func TestLocalServiceMapBadPayloadYieldsDeserializeError(t *testing.T) {
	sm := svcmap.NewLocalServiceMap(svcmap.CBORCodec{})
	sid := svcmap.Register[echoRequest, echoResponse](sm, "test", newEchoAddr(t))

	cid := wire.NewConnID()
	req := wire.NewFrame(3)
	req.SetSID(sid).SetCID(cid).AppendPayload([]byte{0xff, 0xff, 0xff})

	fut, err := sm.CallService(context.Background(), req, svcmap.CallContext{})
	if err != nil {
		t.Fatalf("CallService: %v", err)
	}
	res := <-fut
	if res.Response.Kind != svcmap.ResponseWireFormat {
		t.Fatalf("kind = %v, want ResponseWireFormat", res.Response.Kind)
	}
	ef, err := wire.ParseErrorFrame(res.Response.Frame)
	if err != nil {
		t.Fatalf("parse error frame: %v", err)
	}
	if ef.Kind != wire.ErrorKindDeserialize {
		t.Fatalf("kind = %v", ef.Kind)
	}
}

func TestLocalServiceMapSend(t *testing.T) {
	sm := svcmap.NewLocalServiceMap(svcmap.CBORCodec{})
	sid := svcmap.Register[echoRequest, echoResponse](sm, "test", newEchoAddr(t))

	codec := svcmap.CBORCodec{}
	payload, _ := codec.Marshal(echoRequest{Text: "fire-and-forget"})
	f := wire.NewFrame(len(payload))
	f.SetSID(sid).SetCID(wire.NewConnID()).AppendPayload(payload)

	fut, err := sm.SendService(context.Background(), f, svcmap.CallContext{})
	if err != nil {
		t.Fatalf("SendService: %v", err)
	}
	select {
	case err := <-fut:
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}
