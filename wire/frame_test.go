// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"bytes"
	"io"
	"testing"

	"code.hybscloud.com/remoteactor/wire"
)

func TestFrameRoundTrip(t *testing.T) {
	sid := wire.ServiceIDFromSeed([]byte("myns"), []byte("Add"))
	cid := wire.NewConnID()

	f := wire.NewFrame(8)
	f.SetSID(sid).SetCID(cid).AppendPayload([]byte("hello"))

	if f.SID() != sid {
		t.Fatalf("sid mismatch")
	}
	if f.CID() != cid {
		t.Fatalf("cid mismatch")
	}
	if !bytes.Equal(f.Payload(), []byte("hello")) {
		t.Fatalf("payload mismatch: %q", f.Payload())
	}
	if f.Len() != uint64(wire.HeaderLen+5) {
		t.Fatalf("len mismatch: got %d want %d", f.Len(), wire.HeaderLen+5)
	}

	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := wire.Decode(&buf, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SID() != sid || decoded.CID() != cid {
		t.Fatalf("decoded header mismatch")
	}
	if !bytes.Equal(decoded.Payload(), []byte("hello")) {
		t.Fatalf("decoded payload mismatch: %q", decoded.Payload())
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	f := wire.NewFrame(0)
	if f.Len() != uint64(wire.HeaderLen) {
		t.Fatalf("empty frame should have header-only length")
	}
	if f.Payload() != nil {
		t.Fatalf("empty frame should have nil payload, got %v", f.Payload())
	}

	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := wire.Decode(&buf, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Payload()) != 0 {
		t.Fatalf("expected zero-length payload, got %d bytes", len(decoded.Payload()))
	}
}

func TestDecodeCleanEOF(t *testing.T) {
	_, err := wire.Decode(bytes.NewReader(nil), 0)
	if err != io.EOF {
		t.Fatalf("expected io.EOF at message boundary, got %v", err)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := wire.Decode(bytes.NewReader([]byte{1, 2, 3}), 0)
	if err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestDecodeMessageSizeExceeded(t *testing.T) {
	f := wire.NewFrame(0)
	f.AppendPayload(make([]byte, 100))

	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err := wire.Decode(&buf, wire.HeaderLen+10)
	if err != wire.ErrMessageSizeExceeded {
		t.Fatalf("expected ErrMessageSizeExceeded, got %v", err)
	}
}
