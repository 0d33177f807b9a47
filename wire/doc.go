// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the on-the-wire framing used by remote peers: a
// self-delimited, length-prefixed binary frame carrying a service
// identifier, a connection identifier, and an opaque payload.
//
// Wire format (bit-exact, little-endian):
//
//	offset  size  field
//	  0      8    length   (u64, includes the 40-byte header)
//	  8     16    sid      (16 raw bytes)
//	 24     16    cid      (16 raw bytes; all-zero = send, all-ones sid = response)
//	 40      -    payload  (length - 40 bytes)
//
// Decoding is bounded: callers configure a maximum frame size and decoding
// fails explicitly, never panics, on truncated or oversized input.
package wire
