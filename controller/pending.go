// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"time"

	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/statestore"
)

// pendingState - the mutable staging area between start_block and its
// terminal call, commit_block or abort_block (spec §3 "Pending State").
//
// Three of its fields are the ones push_transaction's block-restore
// point snapshots and truncates: receipts ("block.transactions"),
// trxs ("pending.trxs") and actions ("pending.actions").
type pendingState struct {
	session  *statestore.Session
	tokenTag uint64 // the pre-start revision; the paired token savepoint's tag

	block *chainblock.BlockState

	receipts []chainblock.TransactionReceipt
	trxs     []chainblock.AppliedTransaction
	actions  []chainblock.Action

	confirmCount int
}

// blockTime - pending_block_time(), the timestamp validate_expiration
// and clear_expired_input_transactions measure against
func (p *pendingState) blockTime() time.Time {
	return p.block.Block.Header.Timestamp
}

// restorePoint - the sizes of the three growable slices, snapshotted
// before executing one transaction (spec §4.5 push_transaction step 4)
type restorePoint struct {
	receipts int
	trxs     int
	actions  int
}

func (p *pendingState) snapshot() restorePoint {
	return restorePoint{
		receipts: len(p.receipts),
		trxs:     len(p.trxs),
		actions:  len(p.actions),
	}
}

// truncateTo - drop everything appended to the three slices since rp
// was taken; this is the block-restore guard's restore action
func (p *pendingState) truncateTo(rp restorePoint) {
	p.receipts = p.receipts[:rp.receipts]
	p.trxs = p.trxs[:rp.trxs]
	p.actions = p.actions[:rp.actions]
}
