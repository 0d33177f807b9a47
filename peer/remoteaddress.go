// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"fmt"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/svcmap"
	"code.hybscloud.com/remoteactor/wire"
)

// RemoteAddress is a cheap, cloneable client-facing handle that looks like
// a local mailbox.Address[M, R] but actually serializes msg, assigns a
// fresh wire.ConnID, submits the frame to its owning Peer, and awaits the
// correlated response. It is the terminal consumer of a wire response: the
// one place that distinguishes a successfully deserialized R from a
// wire-format protocol error frame, since neither the Peer nor svcmap ever
// inspects a response payload's bytes.
type RemoteAddress[M any, R any] struct {
	peer  *Peer
	sid   wire.ServiceID
	codec svcmap.Codec
}

// NewRemoteAddress builds a RemoteAddress bound to sid on p. A nil codec
// defaults to svcmap.CBORCodec{}, matching the codec the rest of this
// module assumes when none is configured.
func NewRemoteAddress[M any, R any](p *Peer, sid wire.ServiceID, codec svcmap.Codec) RemoteAddress[M, R] {
	if codec == nil {
		codec = svcmap.CBORCodec{}
	}
	return RemoteAddress[M, R]{peer: p, sid: sid, codec: codec}
}

// RemoteAddressFor is NewRemoteAddress using p's own configured codec
// (peer.WithCodec, defaulting to CBOR) rather than one supplied by the
// caller, for the common case of a single codec shared by every service a
// Peer talks to.
func RemoteAddressFor[M any, R any](p *Peer, sid wire.ServiceID) RemoteAddress[M, R] {
	return NewRemoteAddress[M, R](p, sid, p.opts.codec)
}

// Send serializes msg and submits it as a fire-and-forget frame (cid =
// ConnIDNull); no response is awaited and no pending entry is created.
func (a RemoteAddress[M, R]) Send(ctx context.Context, msg M) error {
	payload, err := a.codec.Marshal(msg)
	if err != nil {
		return &Error{PeerID: a.peer.id.String(), PeerName: a.peer.name, SID: a.sid, Kind: ErrorKindSerialize, Description: err.Error()}
	}
	frame := wire.NewFrame(len(payload))
	frame.SetSID(a.sid).SetCID(wire.ConnIDNull).AppendPayload(payload)
	return a.peer.submitSend(ctx, frame)
}

// Call serializes msg, assigns a fresh cid, and blocks until the
// correlated response arrives, the peer closes, or ctx is cancelled. A
// response whose payload fails to deserialize into R is retried as a
// wire-format protocol error frame; if that parses, the call fails with
// ErrorKindRemote wrapping the reported wire.ErrorKind (a local Timeout is
// never reported this way — only a response that itself decodes to kind
// Timeout becomes Remote(Timeout), so callers can always tell their own
// deadline from a relayed one).
func (a RemoteAddress[M, R]) Call(ctx context.Context, msg M) (R, error) {
	var zero R

	payload, err := a.codec.Marshal(msg)
	if err != nil {
		return zero, &Error{PeerID: a.peer.id.String(), PeerName: a.peer.name, SID: a.sid, Kind: ErrorKindSerialize, Description: err.Error()}
	}

	cid := wire.NewConnID()
	frame := wire.NewFrame(len(payload))
	frame.SetSID(a.sid).SetCID(cid).AppendPayload(payload)

	respFrame, err := a.peer.submitCall(ctx, frame)
	if err != nil {
		return zero, err
	}

	var out R
	if uerr := a.codec.Unmarshal(respFrame.Payload(), &out); uerr != nil {
		if ef, perr := wire.ParseErrorFrame(respFrame); perr == nil {
			remoteErr := &Error{
				PeerID:      a.peer.id.String(),
				PeerName:    a.peer.name,
				SID:         a.sid,
				CID:         cid,
				Kind:        ErrorKindRemote,
				RemoteKind:  kindFromWire(ef.Kind),
				Cause:       fmt.Errorf("%s: %s", ef.Kind, ef.Description),
				Description: ef.Description,
				RelayID:     ef.RelayID,
				RelayName:   ef.RelayName,
			}
			a.peer.emitRemoteError(remoteErr)
			return zero, remoteErr
		}
		return zero, &Error{
			PeerID:      a.peer.id.String(),
			PeerName:    a.peer.name,
			SID:         a.sid,
			CID:         cid,
			Kind:        ErrorKindDeserialize,
			Description: uerr.Error(),
		}
	}
	return out, nil
}

// ID returns the owning Peer's process-unique identifier.
func (a RemoteAddress[M, R]) ID() uint64 { return a.peer.uint64ID() }

// Name returns the owning Peer's human-readable name, if any.
func (a RemoteAddress[M, R]) Name() (string, bool) { return a.peer.PeerName() }

// Clone returns a, unchanged: RemoteAddress is already a cheap value type.
func (a RemoteAddress[M, R]) Clone() mailbox.Address[M, R] { return a }
