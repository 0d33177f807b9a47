// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"

	"github.com/OneOfOne/xxhash"
)

// ServiceID identifies a service advertised by a local or relayed service
// map. It is derived deterministically from a namespace and a type name, so
// two processes compiled independently (even in different languages) agree
// on the same 16 bytes for the same (namespace, type) pair.
type ServiceID [16]byte

var (
	// ServiceIDNull means "no service" / "this is not a request header".
	ServiceIDNull = ServiceID{}

	// ServiceIDFull marks a frame as a response rather than a request: all
	// 16 bytes set.
	ServiceIDFull = ServiceID{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
)

// IsNull reports whether sid is the reserved NULL value.
func (sid ServiceID) IsNull() bool { return sid == ServiceIDNull }

// IsFull reports whether sid is the reserved FULL value (marks a response).
func (sid ServiceID) IsFull() bool { return sid == ServiceIDFull }

// String renders the service id as a 0x-prefixed hex string, e.g. for logs.
func (sid ServiceID) String() string { return "0x" + hex.EncodeToString(sid[:]) }

// ServiceIDFromSeed derives a ServiceID from the concatenation of namespace
// and typeName, separated by "::". The algorithm is a public part of the
// protocol: two independent 64-bit xxhash digests (seeds 0 and 1) of the
// same input, concatenated into 16 bytes. This is a pure function: the same
// inputs always produce the same 16 bytes, on any platform, in any process,
// forever — other-language peers MUST reimplement this exact scheme to
// interoperate.
func ServiceIDFromSeed(namespace, typeName []byte) ServiceID {
	input := make([]byte, 0, len(namespace)+2+len(typeName))
	input = append(input, namespace...)
	input = append(input, ':', ':')
	input = append(input, typeName...)

	var sid ServiceID
	h0 := xxhash.NewS64(0)
	_, _ = h0.Write(input)
	putUint64LE(sid[0:8], h0.Sum64())

	h1 := xxhash.NewS64(1)
	_, _ = h1.Write(input)
	putUint64LE(sid[8:16], h1.Sum64())

	return sid
}

func putUint64LE(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
