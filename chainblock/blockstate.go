// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"github.com/bitmark-inc/chaincore/blockdigest"
)

// AppliedTransaction - the metadata a BlockState retains about one
// transaction that made it into the block, enough to answer "is this
// transaction already on this branch" without re-executing it
type AppliedTransaction struct {
	Id        string // hex of the transaction's Id() digest
	SignedId  string // hex of SignedId(), the unapplied-pool dedup key
	Expiration int64 // unix seconds of the transaction's expiration
}

// BlockState - a validated block plus everything the fork database
// and controller need to reason about it without re-deriving it from
// the block bytes every time
type BlockState struct {
	Block *Block
	Id    blockdigest.Digest

	ActiveSchedule  ProducerSchedule
	PendingSchedule *ProducerSchedule

	// PendingScheduleBlockNum - the block number that introduced
	// PendingSchedule; the schedule is promotable to active once this
	// number is itself DPoS-irreversible (spec §4.5 start_block)
	PendingScheduleBlockNum uint64

	// ProducerLastProduced - per active-schedule producer (keyed by
	// account string), the highest block number they have produced on
	// this branch. Feeds a simplified DPoS-irreversibility threshold:
	// see controller.dposIrreversibleThreshold and DESIGN.md.
	ProducerLastProduced map[string]uint64

	DposIrreversibleBlockNum uint64
	BftIrreversibleBlockNum  uint64

	InCurrentChain bool
	Validated      bool

	AppliedTransactions []AppliedTransaction

	// ConfirmedBy - producer account strings that have sent an
	// explicit BFT confirmation of this block; once it reaches quorum,
	// BftIrreversibleBlockNum is raised to this block's number
	ConfirmedBy map[string]bool
}

// Number - convenience accessor matching Block.Number
func (bs *BlockState) Number() uint64 {
	return bs.Block.Number()
}

// Previous - the parent block id this state's block links to
func (bs *BlockState) Previous() blockdigest.Digest {
	return bs.Block.Header.Previous
}

// HasApplied - whether a transaction (by its unsigned Id, hex-encoded)
// is already recorded as applied on this branch
func (bs *BlockState) HasApplied(idHex string) bool {
	for _, at := range bs.AppliedTransactions {
		if at.Id == idHex {
			return true
		}
	}
	return false
}
