// Copyright (c) 2014-2017 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/mr-tron/base58"
)

// ToBase58 - encode a byte slice as base58 text
func ToBase58(data []byte) string {
	return base58.Encode(data)
}

// FromBase58 - decode base58 text back to a byte slice
//
// returns nil on malformed input, matching the zero-length sentinel
// the account/private/seed packages already check for
func FromBase58(s string) []byte {
	data, err := base58.Decode(s)
	if nil != err {
		return nil
	}
	return data
}
