// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "errors"

var (
	// ErrInvalidArgument reports a nil reader/writer or an invalid frame.
	ErrInvalidArgument = errors.New("wire: invalid argument")

	// ErrMessageSizeExceeded reports that a frame's declared length exceeds
	// the configured maximum size for the decoder.
	ErrMessageSizeExceeded = errors.New("wire: message size exceeded")

	// ErrDeserialize reports a header that could not be parsed, usually
	// because the stream ended before a full header arrived.
	ErrDeserialize = errors.New("wire: truncated or malformed frame header")

	// ErrShortHeader names the short-header condition. Decode and
	// DecodeStream do not return it: they report a short header as
	// ErrDeserialize.
	ErrShortHeader = errors.New("wire: short header")
)
