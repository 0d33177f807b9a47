// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/remoteactor/wire"
)

func TestForwardPreservesFrame(t *testing.T) {
	sid := wire.ServiceIDFromSeed([]byte("ns"), []byte("Add"))
	cid := wire.NewConnID()

	src := wire.NewFrame(3)
	src.SetSID(sid).SetCID(cid).AppendPayload([]byte("xyz"))

	var wireBuf bytes.Buffer
	if err := wire.Encode(&wireBuf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var dst bytes.Buffer
	n, err := wire.Forward(&dst, &wireBuf, 0)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if n != 3 {
		t.Fatalf("forwarded %d bytes, want 3", n)
	}

	got, err := wire.Decode(&dst, 0)
	if err != nil {
		t.Fatalf("decode forwarded: %v", err)
	}
	if got.SID() != sid || got.CID() != cid || !bytes.Equal(got.Payload(), []byte("xyz")) {
		t.Fatalf("forwarded frame does not match source")
	}
}
