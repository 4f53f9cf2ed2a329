// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockring - the 65,536-slot BlockSummary ring used for TaPoS
//
// each slot holds the id of the most recent block committed at that
// block_num & 0xFFFF position; validate_tapos looks a transaction's
// ref_block_num up in this ring and compares the low-order prefix of
// the stored id against the transaction's ref_block_prefix
package blockring

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/constants"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/logger"
)

// Slots - number of entries in the ring, fixed by the TaPoS mask
const Slots = constants.BlockSummarySlots

// slot in the ring
type entry struct {
	blockNum uint64
	id       blockdigest.Digest
	crc      uint64 // diagnostic corruption check, see crc.go
}

type ringData struct {
	sync.RWMutex

	log *logger.L

	height uint64
	ring   [Slots]entry

	initialised bool
}

var globalData ringData

// Initialise - seed every slot to the genesis id; slot 1 is where
// validate_tapos will land for any transaction referencing block_num 1
// before a real block 1 has ever been committed
func Initialise(genesisID blockdigest.Digest, genesisPacked []byte) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("blockring")
	globalData.log.Info("starting…")

	clearRingBuffer(genesisID, genesisPacked)

	globalData.initialised = true
	return nil
}

// Finalise - shut down
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

func slot(blockNum uint64) uint64 {
	return blockNum & (Slots - 1)
}

// Put - refresh the ring slot for blockNum to id
func Put(blockNum uint64, id blockdigest.Digest, packedBlock []byte) {
	globalData.Lock()
	defer globalData.Unlock()

	i := slot(blockNum)
	globalData.ring[i] = entry{
		blockNum: blockNum,
		id:       id,
		crc:      CRC(blockNum, packedBlock),
	}
	if blockNum > globalData.height {
		globalData.height = blockNum
	}

	globalData.log.Debugf("put block number: %d", blockNum)
}

// Id - the id currently occupying the slot for blockNum
func Id(blockNum uint64) blockdigest.Digest {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.ring[slot(blockNum)].id
}

// Prefix - the TaPoS prefix of the id currently occupying the slot for
// blockNum, used by validate_tapos
func Prefix(blockNum uint64) uint32 {
	return RefBlockPrefix(Id(blockNum))
}

// RefBlockPrefix - the low-order prefix a transaction embeds as
// ref_block_prefix when it is built against a given block id
func RefBlockPrefix(id blockdigest.Digest) uint32 {
	return binary.LittleEndian.Uint32(id[8:12])
}

// Height - the highest block number ever stored in the ring
func Height() uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.height
}

// Clear - reseed every slot back to the genesis id
func Clear(genesisID blockdigest.Digest, genesisPacked []byte) {
	globalData.Lock()
	defer globalData.Unlock()
	clearRingBuffer(genesisID, genesisPacked)
}

// must hold the lock to call this
func clearRingBuffer(genesisID blockdigest.Digest, genesisPacked []byte) {
	crc := CRC(0, genesisPacked)
	for i := range globalData.ring {
		globalData.ring[i] = entry{
			blockNum: 0,
			id:       genesisID,
			crc:      crc,
		}
	}
	globalData.height = 0
}
