// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockring_test

import (
	"testing"

	"github.com/bitmark-inc/chaincore/blockring"
)

func TestCRCIsDeterministic(t *testing.T) {
	packed := []byte("a packed block")

	a := blockring.CRC(1, packed)
	b := blockring.CRC(1, packed)
	if a != b {
		t.Fatalf("crc not deterministic: %016x != %016x", a, b)
	}

	c := blockring.CRC(2, packed)
	if a == c {
		t.Fatalf("crc did not change with height: %016x", a)
	}
}
