// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"encoding/binary"

	"github.com/bitmark-inc/chaincore/merkle"
)

// Action - a single domain/key/name/payload tuple. The apply-handler
// registry dispatches on Name; Domain and Key scope which object the
// action addresses within that domain (e.g. domain "account",
// key=owner address, name "transfer").
type Action struct {
	Domain  string
	Key     string
	Name    string
	Payload []byte
}

// digest - the leaf value folded into a block's action-merkle tree
func (a Action) digest() merkle.Digest {
	buf := make([]byte, 0, len(a.Domain)+len(a.Key)+len(a.Name)+len(a.Payload)+16)
	buf = appendLP(buf, []byte(a.Domain))
	buf = appendLP(buf, []byte(a.Key))
	buf = appendLP(buf, []byte(a.Name))
	buf = appendLP(buf, a.Payload)
	return merkle.NewDigest(buf)
}

// appendLP - append a length-prefixed byte slice, the same
// length-then-bytes shape used throughout this package's packers so
// that distinct field boundaries never collide
func appendLP(buf []byte, b []byte) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(b)))
	buf = append(buf, tmp[:]...)
	return append(buf, b...)
}

// ActionMerkleRoot - the merkle root over every action carried by txs,
// in transaction order and then action order within each transaction
func ActionMerkleRoot(txs []*Transaction) merkle.Digest {
	var leaves []merkle.Digest
	for _, tx := range txs {
		for _, a := range tx.Actions {
			leaves = append(leaves, a.digest())
		}
	}
	tree := merkle.FullMerkleTree(leaves)
	return tree[len(tree)-1]
}
