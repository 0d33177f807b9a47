// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"encoding/binary"
	"testing"

	"code.hybscloud.com/remoteactor/wire"
)

func TestWithNativeByteOrderSelectsAValidOrder(t *testing.T) {
	var o wire.Options
	wire.WithNativeByteOrder()(&o)
	if o.ByteOrder != binary.BigEndian && o.ByteOrder != binary.LittleEndian {
		t.Fatalf("unexpected byte order: %T", o.ByteOrder)
	}
}

func TestWithByteOrderOverridesDefault(t *testing.T) {
	var o wire.Options
	wire.WithByteOrder(binary.BigEndian)(&o)
	if o.ByteOrder != binary.BigEndian {
		t.Fatalf("byte order = %v, want BigEndian", o.ByteOrder)
	}
}
