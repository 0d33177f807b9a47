// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package svcmap

import "github.com/fxamacker/cbor/v2"

// Codec marshals and unmarshals application message payloads. It is
// opaque to the wire framing and the Peer: the core never depends on a
// specific format, only on this interface.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CBORCodec is the recommended default: a compact, self-describing binary
// format for the payload.
type CBORCodec struct{}

func (CBORCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (CBORCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }
