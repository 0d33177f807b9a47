// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package peer implements the per-connection actor that turns a duplex
// byte stream into a multiplexed, typed message channel: a reader
// goroutine decoding wire.Frames and dispatching them to registered
// svcmap.ServiceMaps, a writer goroutine serializing responses and
// outbound calls back onto the stream, a pending-call table correlating
// responses with their callers, a backpressure limiter bounding concurrent
// inbound calls, and an event bus reporting connection lifecycle to
// observers.
//
// RemoteAddress is the client-facing half: a generic mailbox.Address
// implementation that serializes a message, submits it to a Peer, and
// awaits the correlated response.
package peer
