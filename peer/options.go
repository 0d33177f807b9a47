// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"time"

	"github.com/rs/zerolog"

	"code.hybscloud.com/remoteactor/svcmap"
)

const (
	defaultMaxFrameSize  = 16 << 20 // 16 MiB
	defaultCallTimeout   = 30 * time.Second
	defaultOutboundQueue = 256
)

// Options configures a Peer. Zero value is never used directly; New always
// starts from defaultOptions and applies Option values on top, the same
// pattern the wire package's Options uses.
type Options struct {
	maxFrameSize  uint64
	backpressure  int64
	callTimeout   time.Duration
	outboundQueue int
	logger        *zerolog.Logger
	codec         svcmap.Codec
}

func defaultOptions() Options {
	return Options{
		maxFrameSize:  defaultMaxFrameSize,
		backpressure:  0,
		callTimeout:   defaultCallTimeout,
		outboundQueue: defaultOutboundQueue,
		codec:         svcmap.CBORCodec{},
	}
}

// Option configures a Peer at construction time.
type Option func(*Options)

// WithMaxFrameSize bounds the size of any single frame this Peer will
// decode or encode; larger incoming frames fail with ErrorKindMessageSizeExceeded.
func WithMaxFrameSize(n uint64) Option {
	return func(o *Options) { o.maxFrameSize = n }
}

// WithBackpressure caps the number of inbound calls in flight at once. n <=
// 0 means unlimited (the default).
func WithBackpressure(n int64) Option {
	return func(o *Options) { o.backpressure = n }
}

// WithCallTimeout bounds how long an outbound Call waits for a response
// before failing with ErrorKindTimeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Options) { o.callTimeout = d }
}

// WithOutboundQueue sets the buffer size of the writer goroutine's outbound
// frame channel.
func WithOutboundQueue(n int) Option {
	return func(o *Options) { o.outboundQueue = n }
}

// WithLogger attaches structured logging. A nil logger (the default) makes
// all logging a no-op.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithCodec overrides the default CBOR payload codec that RemoteAddressFor
// uses for this Peer. Service maps registered with the Peer keep the codec
// they were built with.
func WithCodec(c svcmap.Codec) Option {
	return func(o *Options) { o.codec = c }
}

func resolveOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
