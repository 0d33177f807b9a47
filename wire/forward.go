// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "io"

// Forward relays exactly one frame from src to dst without deserializing
// its payload: it parses the header, then streams the payload bytes
// straight through via io.Copy, rejecting frames larger than maxSize. It
// suits a pure byte-splicing relay that forwards raw connections without
// buffering whole payloads (svcmap.RelayMap works on already-decoded frames
// and does not call it) — adapted from the two-phase read-then-write state machine of a
// classic stream forwarder: parse the header, then drain the payload
// straight to the destination.
//
// Forward returns the number of payload bytes copied and any error from
// parsing the header, copying the payload, or writing it out.
func Forward(dst io.Writer, src io.Reader, maxSize uint64, opts ...Option) (int64, error) {
	var copied int64

	err := DecodeStream(src, maxSize, func(sid ServiceID, cid ConnID, payloadLen int64, chunk io.Reader) error {
		header := NewFrame(0, opts...)
		header.SetSID(sid).SetCID(cid)
		// Patch the length field to the real total before the payload is
		// known to have been fully forwarded; this mirrors the length the
		// sender declared, since Forward never changes payload size.
		o := resolveOptions(opts...)
		o.ByteOrder.PutUint64(header.buf[idxLen:idxSID], uint64(idxMsg)+uint64(payloadLen))

		if err := Encode(dst, header); err != nil {
			return err
		}

		n, err := io.Copy(dst, chunk)
		copied += n
		return err
	}, opts...)

	return copied, err
}
