// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forkdb

import (
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
)

// FetchBranchFrom - walk aId and bId back towards their common
// ancestor, returning each branch in descendant→ancestor order (the
// common ancestor itself is excluded from both). Reversing a branch
// yields the ancestor→descendant replay order (spec §4.1).
func (db *ForkDB) FetchBranchFrom(aId, bId blockdigest.Digest) (branchFromA, branchFromB []*chainblock.BlockState, err error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chainA, err := db.ancestryLocked(aId)
	if nil != err {
		return nil, nil, err
	}
	chainB, err := db.ancestryLocked(bId)
	if nil != err {
		return nil, nil, err
	}

	indexB := make(map[blockdigest.Digest]int, len(chainB))
	for i, bs := range chainB {
		indexB[bs.Id] = i
	}

	for i, bs := range chainA {
		if j, ok := indexB[bs.Id]; ok {
			return chainA[:i], chainB[:j], nil
		}
	}

	return nil, nil, fault.ErrNoCommonAncestor
}

// ancestryLocked - id, id.parent, id.grandparent, ... up to and
// including the genesis block. Caller holds db.mu.
func (db *ForkDB) ancestryLocked(id blockdigest.Digest) ([]*chainblock.BlockState, error) {
	var chain []*chainblock.BlockState
	for {
		bs, ok := db.blocks[id]
		if !ok {
			return nil, fault.ErrBlockNotFound
		}
		chain = append(chain, bs)
		if 0 == bs.Number() {
			return chain, nil
		}
		id = bs.Previous()
	}
}
