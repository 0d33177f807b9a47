// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package svcmap

import (
	"context"
	"errors"

	"code.hybscloud.com/remoteactor/wire"
)

// ErrUnknownService is returned synchronously by SendService/CallService
// when asked to dispatch a frame whose sid is not among Services(). In
// practice a Peer only ever dispatches sids it already matched against
// Services(), so this only fires if a caller bypasses that contract.
var ErrUnknownService = errors.New("svcmap: unknown service")

// ResponseKind tags the outcome of a call dispatch.
type ResponseKind uint8

const (
	// ResponseNothing means the dispatch completed but owes no response
	// frame (used internally; CallService normally produces one of the two
	// kinds below).
	ResponseNothing ResponseKind = iota

	// ResponseCallResponse carries a successfully serialized response
	// frame (sid = ServiceIDFull) to deliver to the caller.
	ResponseCallResponse

	// ResponseWireFormat carries a serialized protocol error frame (sid =
	// ServiceIDFull, built with wire.BuildErrorFrame) to forward to the
	// caller verbatim.
	ResponseWireFormat
)

// Response is the outcome of a call dispatch.
type Response struct {
	Kind  ResponseKind
	Frame *wire.Frame
}

// CallResult is delivered on a ResponseFuture.
type CallResult struct {
	Response Response
	Err      error
}

// Future resolves a Send dispatch: nil on success, an error otherwise. It
// is the Go analogue of the boxed futures the dispatch entry points return
// in the original design — a channel the Peer can select on without
// blocking its own loop.
type Future <-chan error

// ResponseFuture resolves a Call dispatch to a CallResult.
type ResponseFuture <-chan CallResult

// CallContext carries the identifying information a service map needs to
// build structured error frames/log lines without depending on the peer
// package (which in turn depends on svcmap).
type CallContext struct {
	PeerID   string
	PeerName string
}

// ServiceMap is the polymorphic dispatch surface a Peer consumes. Both
// entry points return a future rather than blocking so a Peer can schedule
// many concurrent dispatches without stalling its reader loop.
type ServiceMap interface {
	// SendService accepts a fire-and-forget frame. The returned Future
	// resolves once delivery to the target actor completes (or fails).
	SendService(ctx context.Context, frame *wire.Frame, cc CallContext) (Future, error)

	// CallService accepts a call frame. The returned ResponseFuture
	// resolves to a Response ready to be written back to the caller.
	CallService(ctx context.Context, frame *wire.Frame, cc CallContext) (ResponseFuture, error)

	// Services lists the service ids this map handles.
	Services() []wire.ServiceID
}
