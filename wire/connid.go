// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// ConnID correlates a call frame with its response. ConnIDNull marks a
// "send" frame (fire-and-forget, no response owed).
type ConnID [16]byte

// ConnIDNull is the reserved "this is a send" value.
var ConnIDNull = ConnID{}

// IsNull reports whether cid is the reserved NULL value.
func (cid ConnID) IsNull() bool { return cid == ConnIDNull }

// String renders the connection id as a 0x-prefixed hex string.
func (cid ConnID) String() string { return "0x" + hex.EncodeToString(cid[:]) }

// NewConnID draws 16 bytes from a cryptographically strong RNG. It must be
// unique across the lifetime of the connection it is used on; a UUIDv4
// (backed by crypto/rand) satisfies that with overwhelming probability.
func NewConnID() ConnID {
	return ConnID(uuid.New())
}
