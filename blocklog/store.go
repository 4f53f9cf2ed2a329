// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/logger"
)

// readCacheSize - number of recently read entries kept in the LRU in
// front of goleveldb; replay-on-startup and reorg re-applies both
// re-read a shrinking tail of recent numbers, which is exactly what
// this cache is shaped for
const readCacheSize = 256

type cachedEntry struct {
	block *chainblock.Block
	id    blockdigest.Digest
}

// entry - the on-disk record for one finalized block
type entry struct {
	Number   uint64
	Id       blockdigest.Digest
	Previous blockdigest.Digest
	Block    *chainblock.Block
}

// Store - append-only sequence of finalized blocks, keyed by
// big-endian block number the same way the teacher's block package
// keys storage.Pool.Blocks
type Store struct {
	mu sync.RWMutex

	log   *logger.L
	db    *leveldb.DB
	cache *lru.Cache

	height        uint64
	previousBlock blockdigest.Digest
	haveHead      bool
}

// Open - open or create the block log at path. If entries already
// exist, the in-memory head cursor is primed from the last one.
func Open(path string, readOnly bool) (*Store, error) {
	opt := &ldb_opt.Options{
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}
	db, err := leveldb.OpenFile(path, opt)
	if nil != err {
		return nil, err
	}

	cache, err := lru.New(readCacheSize)
	if nil != err {
		db.Close()
		return nil, err
	}

	s := &Store{
		log:   logger.New("blocklog"),
		db:    db,
		cache: cache,
	}

	last, ok, err := s.lastEntry()
	if nil != err {
		db.Close()
		return nil, err
	}
	if ok {
		s.height = last.Number
		s.previousBlock = last.Id
		s.haveHead = true
	}

	return s, nil
}

// Close - release the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func numberKey(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}

func (s *Store) lastEntry() (entry, bool, error) {
	it := s.db.NewIterator(&ldb_util.Range{}, nil)
	defer it.Release()

	if !it.Last() {
		return entry{}, false, it.Error()
	}

	var e entry
	if err := json.Unmarshal(it.Value(), &e); nil != err {
		return entry{}, false, err
	}
	return e, true, nil
}

// Append - write bs as the next log entry. bs.Number() must be
// exactly one more than the current head (or zero, for genesis on an
// empty log) and bs.Previous() must equal the current head's id.
func (s *Store) Append(bs *chainblock.BlockState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected := uint64(0)
	if s.haveHead {
		expected = s.height + 1
		if bs.Previous() != s.previousBlock {
			return fault.ErrLinkageViolation
		}
	}
	if bs.Number() != expected {
		return fault.ErrBlockOutOfSequence
	}

	e := entry{
		Number:   bs.Number(),
		Id:       bs.Id,
		Previous: bs.Previous(),
		Block:    bs.Block,
	}
	packed, err := json.Marshal(e)
	if nil != err {
		return err
	}

	if err := s.db.Put(numberKey(bs.Number()), packed, nil); nil != err {
		return err
	}

	s.height = bs.Number()
	s.previousBlock = bs.Id
	s.haveHead = true
	s.cache.Add(bs.Number(), cachedEntry{block: bs.Block, id: bs.Id})
	return nil
}

// ReadByNum - the block recorded at height n
func (s *Store) ReadByNum(n uint64) (*chainblock.Block, blockdigest.Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.cache.Get(n); ok {
		c := v.(cachedEntry)
		return c.block, c.id, nil
	}

	packed, err := s.db.Get(numberKey(n), nil)
	if nil != err {
		return nil, blockdigest.Digest{}, fault.ErrBlockNotFound
	}

	var e entry
	if err := json.Unmarshal(packed, &e); nil != err {
		return nil, blockdigest.Digest{}, err
	}
	s.cache.Add(n, cachedEntry{block: e.Block, id: e.Id})
	return e.Block, e.Id, nil
}

// Height - the highest recorded block number, and whether the log is non-empty
func (s *Store) Height() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height, s.haveHead
}
