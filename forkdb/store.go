// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forkdb

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/chaincore/avl"
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/limitedset"
	"github.com/bitmark-inc/logger"
)

// recentlyInvalidCapacity - how many recently-invalidated block ids
// are remembered to reject a resubmission without re-validating
const recentlyInvalidCapacity = 1024

// prunedCapacity - how many pruned (already irreversible) BlockStates
// are kept around in an LRU after leaving the live index, so a query
// that lands just after pruning still gets an answer instead of
// fault.ErrBlockNotFound
const prunedCapacity = 4096

// pruneRetention - number of blocks below lastIrreversible that stay
// in the live index regardless of irreversibility, since branch/
// confirmation queries close to the current head reach a little below
// it
const pruneRetention = 32

// IrreversibleFunc - invoked once, in block-number order, for every
// block whose irreversibility threshold newly covers it
type IrreversibleFunc func(bs *chainblock.BlockState)

// ForkDB - the in-memory DAG of BlockState
type ForkDB struct {
	mu sync.RWMutex

	log *logger.L

	blocks   map[blockdigest.Digest]*chainblock.BlockState
	byNumber map[uint64][]*chainblock.BlockState

	tree *avl.Tree // eligible (validated) blocks, ordered by headKey

	invalid *limitedset.LimitedSet
	pruned  *lru.Cache // digest -> *chainblock.BlockState, evicted by MaybeFireIrreversible

	lastIrreversible uint64
	onIrreversible   IrreversibleFunc
}

// New - an empty fork database; seed it with Init before use
func New(onIrreversible IrreversibleFunc) *ForkDB {
	pruned, err := lru.New(prunedCapacity)
	if nil != err {
		panic("forkdb: lru.New failed: " + err.Error())
	}
	return &ForkDB{
		log:            logger.New("forkdb"),
		blocks:         make(map[blockdigest.Digest]*chainblock.BlockState),
		byNumber:       make(map[uint64][]*chainblock.BlockState),
		tree:           avl.New(),
		invalid:        limitedset.New(recentlyInvalidCapacity),
		pruned:         pruned,
		onIrreversible: onIrreversible,
	}
}

// Init - seed the fork database with the genesis block state, already
// validated and in the current chain
func (db *ForkDB) Init(genesis *chainblock.BlockState) {
	db.mu.Lock()
	defer db.mu.Unlock()

	genesis.Validated = true
	genesis.InCurrentChain = true
	db.blocks[genesis.Id] = genesis
	db.byNumber[genesis.Number()] = []*chainblock.BlockState{genesis}
	db.tree.Insert(db.key(genesis), genesis)
	db.lastIrreversible = genesis.Number()
}

func (db *ForkDB) key(bs *chainblock.BlockState) headKey {
	return headKey{
		dposIrreversible: bs.DposIrreversibleBlockNum,
		blockNum:         bs.Number(),
		timestamp:        bs.Block.Header.Timestamp,
		id:               bs.Id.String(),
	}
}

// Add - wrap and register a new candidate block. The block is not yet
// eligible to become head until SetValidity(bs, true) is called once
// the controller has successfully replayed it (spec §3 invariant 3:
// head is always the best *validated* block).
func (db *ForkDB) Add(bs *chainblock.BlockState, trust bool) (*chainblock.BlockState, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.blocks[bs.Id]; exists {
		return nil, fault.ErrBlockAlreadyExists
	}
	if db.invalid.Exists(bs.Id.String()) {
		return nil, fault.ErrUnknownBlock
	}

	if 0 != len(db.blocks) {
		if _, ok := db.blocks[bs.Previous()]; !ok {
			return nil, fault.ErrParentNotFound
		}
	}

	if !trust {
		if err := bs.Block.Header.VerifySignature(); nil != err {
			return nil, err
		}
	}

	bs.Validated = false
	db.blocks[bs.Id] = bs
	db.byNumber[bs.Number()] = append(db.byNumber[bs.Number()], bs)
	return bs, nil
}

// SetValidity - mark bs valid (making it head-eligible) or invalid
// (removing it from the index entirely, per spec §4.1)
func (db *ForkDB) SetValidity(bs *chainblock.BlockState, valid bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	bs.Validated = valid
	if valid {
		db.tree.Insert(db.key(bs), bs)
		return
	}

	db.tree.Delete(db.key(bs))
	delete(db.blocks, bs.Id)
	db.removeFromByNumberLocked(bs)
	db.invalid.Add(bs.Id.String())
}

func (db *ForkDB) removeFromByNumberLocked(bs *chainblock.BlockState) {
	list := db.byNumber[bs.Number()]
	for i, b := range list {
		if b.Id == bs.Id {
			db.byNumber[bs.Number()] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if 0 == len(db.byNumber[bs.Number()]) {
		delete(db.byNumber, bs.Number())
	}
}

// MarkInCurrentChain - bookkeeping flag toggled as the controller's
// head pointer steps forward or back across branches
func (db *ForkDB) MarkInCurrentChain(bs *chainblock.BlockState, inChain bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	bs.InCurrentChain = inChain
}

// Head - the current best known validated block
func (db *ForkDB) Head() (*chainblock.BlockState, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	node := db.tree.Last()
	if nil == node {
		return nil, fault.ErrBlockNotFound
	}
	return node.Value().(*chainblock.BlockState), nil
}

// GetBlock - lookup by id, falling back to the pruned-block LRU for a
// block that has already left the live index
func (db *ForkDB) GetBlock(id blockdigest.Digest) (*chainblock.BlockState, error) {
	db.mu.RLock()
	bs, ok := db.blocks[id]
	db.mu.RUnlock()
	if ok {
		return bs, nil
	}
	if cached, ok := db.pruned.Get(id); ok {
		return cached.(*chainblock.BlockState), nil
	}
	return nil, fault.ErrBlockNotFound
}

// GetBlockInCurrentChainByNum - lookup the in-current-chain block at
// a given height, if any
func (db *ForkDB) GetBlockInCurrentChainByNum(n uint64) (*chainblock.BlockState, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, bs := range db.byNumber[n] {
		if bs.InCurrentChain {
			return bs, nil
		}
	}
	return nil, fault.ErrBlockNotFound
}

// MaybeFireIrreversible - call after updating bs's irreversibility
// counters; fires onIrreversible, in block-number order, for every
// block newly covered by max(dpos_irreversible, bft_irreversible)
func (db *ForkDB) MaybeFireIrreversible(bs *chainblock.BlockState) {
	db.mu.Lock()
	threshold := bs.DposIrreversibleBlockNum
	if bs.BftIrreversibleBlockNum > threshold {
		threshold = bs.BftIrreversibleBlockNum
	}
	if threshold <= db.lastIrreversible {
		db.mu.Unlock()
		return
	}
	from := db.lastIrreversible + 1
	db.lastIrreversible = threshold
	db.mu.Unlock()

	for n := from; n <= threshold; n++ {
		target, err := db.GetBlockInCurrentChainByNum(n)
		if nil != err {
			continue
		}
		if nil != db.onIrreversible {
			db.onIrreversible(target)
		}
	}

	if threshold > pruneRetention {
		db.pruneBelow(threshold - pruneRetention)
	}
}

// pruneBelow - move every block state numbered strictly below n out of
// the live index and into the pruned LRU. Safe once n <= lastIrreversible
// minus pruneRetention: a reorg can never again reach that far back.
func (db *ForkDB) pruneBelow(n uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for number, entries := range db.byNumber {
		if number >= n {
			continue
		}
		for _, bs := range entries {
			db.tree.Delete(db.key(bs))
			delete(db.blocks, bs.Id)
			db.pruned.Add(bs.Id, bs)
		}
		delete(db.byNumber, number)
	}
}

// SetIrreversibleCallback - bind (or replace) the callback invoked by
// MaybeFireIrreversible. Exists because the controller that normally
// supplies this callback is itself constructed from an already-running
// ForkDB (spec §9 "model signals as explicit subscriber lists on the
// controller, not back-references from the impl"): New(nil) first,
// then controller.New binds its own onIrreversibleLocked through
// SetIrreversibleCallback once the controller exists.
func (db *ForkDB) SetIrreversibleCallback(fn IrreversibleFunc) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.onIrreversible = fn
}

// LastIrreversible - the highest block number fired through onIrreversible so far
func (db *ForkDB) LastIrreversible() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.lastIrreversible
}
