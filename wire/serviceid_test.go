// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"testing"

	"code.hybscloud.com/remoteactor/wire"
)

func TestServiceIDFromSeedIsDeterministic(t *testing.T) {
	a := wire.ServiceIDFromSeed([]byte("myns"), []byte("Add"))
	b := wire.ServiceIDFromSeed([]byte("myns"), []byte("Add"))
	if a != b {
		t.Fatalf("ServiceIDFromSeed is not pure: %v != %v", a, b)
	}

	c := wire.ServiceIDFromSeed([]byte("myns"), []byte("Show"))
	if a == c {
		t.Fatalf("different type names collided")
	}

	d := wire.ServiceIDFromSeed([]byte("otherns"), []byte("Add"))
	if a == d {
		t.Fatalf("different namespaces collided")
	}
}

func TestServiceIDReservedValues(t *testing.T) {
	if !wire.ServiceIDNull.IsNull() {
		t.Fatal("ServiceIDNull.IsNull() should be true")
	}
	if !wire.ServiceIDFull.IsFull() {
		t.Fatal("ServiceIDFull.IsFull() should be true")
	}
	sid := wire.ServiceIDFromSeed([]byte("ns"), []byte("T"))
	if sid.IsNull() || sid.IsFull() {
		t.Fatal("a derived sid collided with a reserved value")
	}
}

func TestConnIDRandomUnique(t *testing.T) {
	seen := make(map[wire.ConnID]bool)
	for i := 0; i < 1000; i++ {
		id := wire.NewConnID()
		if id.IsNull() {
			t.Fatal("NewConnID produced the NULL value")
		}
		if seen[id] {
			t.Fatal("NewConnID produced a duplicate")
		}
		seen[id] = true
	}
}
