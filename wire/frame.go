// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/binary"

const (
	idxLen = 0
	idxSID = 8
	idxCID = 24
	idxMsg = 40

	// HeaderLen is the fixed size, in bytes, of a frame's header:
	// length(8) + sid(16) + cid(16).
	HeaderLen = idxMsg
)

// Frame is a single wire frame: a length-prefixed header followed by an
// opaque payload. The header is kept pre-written in buf so that SetSID,
// SetCID and AppendPayload only ever mutate bytes in place; the length
// field is kept in sync on every payload mutation.
type Frame struct {
	buf   []byte
	order binary.ByteOrder
}

// NewFrame allocates a frame with capacity for capacity payload bytes and a
// zeroed header (length already set to HeaderLen, sid/cid NULL).
func NewFrame(capacity int, opts ...Option) *Frame {
	o := resolveOptions(opts...)
	buf := make([]byte, idxMsg, idxMsg+capacity)
	f := &Frame{buf: buf, order: o.ByteOrder}
	f.order.PutUint64(f.buf[idxLen:idxSID], uint64(idxMsg))
	return f
}

// frameFromBuf wraps an already-populated buffer (e.g. freshly decoded)
// without copying it.
func frameFromBuf(buf []byte, order binary.ByteOrder) *Frame {
	return &Frame{buf: buf, order: order}
}

// SetSID overwrites the frame's service id.
func (f *Frame) SetSID(sid ServiceID) *Frame {
	copy(f.buf[idxSID:idxCID], sid[:])
	return f
}

// SetCID overwrites the frame's connection id.
func (f *Frame) SetCID(cid ConnID) *Frame {
	copy(f.buf[idxCID:idxMsg], cid[:])
	return f
}

// AppendPayload appends p to the frame's payload and updates the length
// header accordingly.
func (f *Frame) AppendPayload(p []byte) *Frame {
	f.buf = append(f.buf, p...)
	f.order.PutUint64(f.buf[idxLen:idxSID], uint64(len(f.buf)))
	return f
}

// SID returns the frame's service id.
func (f *Frame) SID() ServiceID {
	var sid ServiceID
	copy(sid[:], f.buf[idxSID:idxCID])
	return sid
}

// CID returns the frame's connection id.
func (f *Frame) CID() ConnID {
	var cid ConnID
	copy(cid[:], f.buf[idxCID:idxMsg])
	return cid
}

// Payload returns the frame's payload bytes. The slice aliases the frame's
// internal buffer and must not be retained past the frame's mutation.
func (f *Frame) Payload() []byte {
	if len(f.buf) <= idxMsg {
		return nil
	}
	return f.buf[idxMsg:]
}

// Len returns the total frame length (header + payload), matching the wire
// length field.
func (f *Frame) Len() uint64 {
	return f.order.Uint64(f.buf[idxLen:idxSID])
}

// Bytes returns the raw frame buffer, exactly as it would appear on the
// wire.
func (f *Frame) Bytes() []byte { return f.buf }
