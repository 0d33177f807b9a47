// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"fmt"

	"code.hybscloud.com/remoteactor/wire"
)

// ErrorKind taxonomizes everything that can go wrong on a connection, at a
// level above the raw wire.ErrorKind a remote peer reports: it mirrors every
// wire.ErrorKind and adds Remote, which marks an error received from the
// other side (its wire kind carried in Error.RemoteKind) so a caller can
// always tell "my timeout" from "their timeout".
type ErrorKind uint8

const (
	ErrorKindDeserialize ErrorKind = iota
	ErrorKindSerialize
	ErrorKindUnknownService
	ErrorKindNoHandler
	ErrorKindDowncast
	ErrorKindHandlerDead
	ErrorKindRelayGone
	ErrorKindConnectionClosed
	ErrorKindMessageSizeExceeded
	ErrorKindTimeout
	ErrorKindRemote
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindDeserialize:
		return "Deserialize"
	case ErrorKindSerialize:
		return "Serialize"
	case ErrorKindUnknownService:
		return "UnknownService"
	case ErrorKindNoHandler:
		return "NoHandler"
	case ErrorKindDowncast:
		return "Downcast"
	case ErrorKindHandlerDead:
		return "HandlerDead"
	case ErrorKindRelayGone:
		return "RelayGone"
	case ErrorKindConnectionClosed:
		return "ConnectionClosed"
	case ErrorKindMessageSizeExceeded:
		return "MessageSizeExceeded"
	case ErrorKindTimeout:
		return "Timeout"
	case ErrorKindRemote:
		return "Remote"
	default:
		return "Unknown"
	}
}

// kindFromWire maps a wire-level error kind (as reported by the far side of
// a connection) onto the same-named local kind. Callers store the result in
// Error.RemoteKind under Kind == ErrorKindRemote, so it never collides with
// a same-named local outcome. Unrecognized wire kinds map to
// ErrorKindNoHandler.
func kindFromWire(wk wire.ErrorKind) ErrorKind {
	switch wk {
	case wire.ErrorKindDeserialize:
		return ErrorKindDeserialize
	case wire.ErrorKindSerialize:
		return ErrorKindSerialize
	case wire.ErrorKindUnknownService:
		return ErrorKindUnknownService
	case wire.ErrorKindNoHandler:
		return ErrorKindNoHandler
	case wire.ErrorKindDowncast:
		return ErrorKindDowncast
	case wire.ErrorKindHandlerDead:
		return ErrorKindHandlerDead
	case wire.ErrorKindRelayGone:
		return ErrorKindRelayGone
	case wire.ErrorKindConnectionClosed:
		return ErrorKindConnectionClosed
	case wire.ErrorKindMessageSizeExceeded:
		return ErrorKindMessageSizeExceeded
	case wire.ErrorKindTimeout:
		return ErrorKindTimeout
	default:
		return ErrorKindNoHandler
	}
}

// Error is the structured error type returned across a peer's external
// surface. It always identifies which connection and which call produced
// it, so a caller juggling many peers and many in-flight calls does not
// need to thread that context through by hand.
type Error struct {
	PeerID   string
	PeerName string
	SID      wire.ServiceID
	CID      wire.ConnID
	Kind     ErrorKind
	Cause    error

	// RemoteKind is set alongside Kind == ErrorKindRemote: the local
	// taxonomy equivalent of the wire.ErrorKind the far side reported. A
	// local Timeout is never reported this way; only a response that
	// itself decodes to wire.ErrorKindTimeout yields RemoteKind ==
	// ErrorKindTimeout here, so callers can always tell their own deadline
	// from a relayed one.
	RemoteKind ErrorKind

	RelayID     string
	RelayName   string
	Description string
}

func (e *Error) Error() string {
	if e.PeerName != "" {
		return fmt.Sprintf("peer %s(%s): %s: %s", e.PeerName, e.PeerID, e.Kind, e.Description)
	}
	return fmt.Sprintf("peer %s: %s: %s", e.PeerID, e.Kind, e.Description)
}

func (e *Error) Unwrap() error { return e.Cause }
