// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// Decode reads one whole frame from r into memory (a "buffered" decode: the
// full payload is held before the frame is returned). maxSize bounds the
// accepted frame length; a frame whose header declares a larger length is
// rejected with ErrMessageSizeExceeded before any payload bytes are read.
//
// Decode never panics on truncated input: a clean EOF before any byte of
// the header arrives is reported as io.EOF (message boundary), anything
// shorter than a full header is reported wrapped in ErrDeserialize.
func Decode(r io.Reader, maxSize uint64, opts ...Option) (*Frame, error) {
	o := resolveOptions(opts...)

	header := make([]byte, idxMsg)
	n, err := io.ReadFull(r, header[:8])
	if err != nil {
		if err == io.EOF && n == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading length prefix: %v", ErrDeserialize, err)
	}

	length := o.ByteOrder.Uint64(header[:8])
	if length < idxMsg {
		return nil, fmt.Errorf("%w: declared length %d below header size", ErrDeserialize, length)
	}
	if maxSize > 0 && length > maxSize {
		return nil, ErrMessageSizeExceeded
	}

	if _, err := io.ReadFull(r, header[8:idxMsg]); err != nil {
		return nil, fmt.Errorf("%w: reading sid/cid: %v", ErrDeserialize, err)
	}

	payloadLen := length - idxMsg
	buf := make([]byte, idxMsg, length)
	copy(buf, header)

	if payloadLen > 0 {
		buf = buf[:length]
		if _, err := io.ReadFull(r, buf[idxMsg:]); err != nil {
			return nil, fmt.Errorf("%w: reading payload: %v", ErrDeserialize, err)
		}
	}

	return frameFromBuf(buf, o.ByteOrder), nil
}

// DecodeStream parses one frame's header from r and hands consume a reader
// bounded to exactly the frame's payload length, without ever buffering the
// payload itself — useful for splicing a large payload straight to a
// downstream writer (see Forward). consume may read all or part of the
// payload (or return an error); when it returns nil, DecodeStream drains any
// bytes it left unread so the stream stays framed for the next call.
func DecodeStream(r io.Reader, maxSize uint64, consume func(sid ServiceID, cid ConnID, payloadLen int64, chunk io.Reader) error, opts ...Option) error {
	o := resolveOptions(opts...)

	header := make([]byte, idxMsg)
	n, err := io.ReadFull(r, header[:8])
	if err != nil {
		if err == io.EOF && n == 0 {
			return io.EOF
		}
		return fmt.Errorf("%w: reading length prefix: %v", ErrDeserialize, err)
	}

	length := o.ByteOrder.Uint64(header[:8])
	if length < idxMsg {
		return fmt.Errorf("%w: declared length %d below header size", ErrDeserialize, length)
	}
	if maxSize > 0 && length > maxSize {
		return ErrMessageSizeExceeded
	}

	if _, err := io.ReadFull(r, header[8:idxMsg]); err != nil {
		return fmt.Errorf("%w: reading sid/cid: %v", ErrDeserialize, err)
	}

	var sid ServiceID
	var cid ConnID
	copy(sid[:], header[idxSID:idxCID])
	copy(cid[:], header[idxCID:idxMsg])

	payloadLen := int64(length - idxMsg)
	lr := io.LimitReader(r, payloadLen)

	if err := consume(sid, cid, payloadLen, lr); err != nil {
		return err
	}

	// Drain whatever consume did not read so the stream realigns on the
	// next frame boundary.
	if _, err := io.Copy(io.Discard, lr); err != nil {
		return fmt.Errorf("%w: draining unread payload: %v", ErrDeserialize, err)
	}
	return nil
}
