// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forkdb

import (
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/fault"
)

// AddConfirmation - record an explicit BFT confirmation of id by
// producer. Once distinct confirmers reach quorum, the block's
// BftIrreversibleBlockNum is raised to its own number and the
// irreversible event is (re-)evaluated (spec §4.1: "add(confirmation):
// records a producer confirmation on an existing header; may advance
// bft_irreversible_blocknum of descendants").
func (db *ForkDB) AddConfirmation(id blockdigest.Digest, producer string, quorum int) error {
	db.mu.Lock()
	bs, ok := db.blocks[id]
	if !ok {
		db.mu.Unlock()
		return fault.ErrBlockNotFound
	}

	if nil == bs.ConfirmedBy {
		bs.ConfirmedBy = make(map[string]bool)
	}
	bs.ConfirmedBy[producer] = true

	reached := len(bs.ConfirmedBy) >= quorum && bs.Number() > bs.BftIrreversibleBlockNum
	if reached {
		bs.BftIrreversibleBlockNum = bs.Number()
	}
	db.mu.Unlock()

	if reached {
		db.MaybeFireIrreversible(bs)
	}
	return nil
}
