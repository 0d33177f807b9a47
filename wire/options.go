// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/binary"

// Options configures frame decoding/encoding.
type Options struct {
	// ByteOrder governs how the header fields are laid out. The protocol is
	// defined as little-endian; overriding this is only meaningful for
	// testing against non-conformant peers, never for production wire
	// compatibility.
	ByteOrder binary.ByteOrder

	// MaxSize records a maximum total frame length (header + payload) for
	// callers to consult. Decode and DecodeStream do not read it: their
	// bound is always their own maxSize argument.
	MaxSize uint64
}

var defaultOptions = Options{
	ByteOrder: binary.LittleEndian,
	MaxSize:   0,
}

// Option configures an Options value.
type Option func(*Options)

// WithByteOrder overrides the header byte order. Defaults to, and should
// almost always stay, little-endian per the wire format.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *Options) { o.ByteOrder = order }
}

// WithNativeByteOrder selects the host's native byte order, useful only for
// same-host transports (e.g. a local pipe between two processes of a
// cooperatively-built system) that never need to interoperate over the
// network.
func WithNativeByteOrder() Option {
	return func(o *Options) { o.ByteOrder = nativeByteOrder() }
}

// WithMaxSize sets MaxSize on this Options value; the decoders do not read
// it.
func WithMaxSize(n uint64) Option {
	return func(o *Options) { o.MaxSize = n }
}

func resolveOptions(opts ...Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
