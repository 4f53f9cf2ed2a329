// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statestore

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Element - a key/value pair returned by a cursor scan
type Element struct {
	Key   []byte
	Value []byte
}

// PoolHandle - a prefixed view of the store, one per indexed object
// type (accounts, domains, groups, tokens, global properties, ...)
type PoolHandle struct {
	store  *Store
	prefix byte
	limit  []byte
}

func newPoolHandle(s *Store, prefix byte) *PoolHandle {
	limit := []byte(nil)
	if prefix < 255 {
		limit = []byte{prefix + 1}
	}
	return &PoolHandle{store: s, prefix: prefix, limit: limit}
}

func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixed := make([]byte, 1, len(key)+1)
	prefixed[0] = p.prefix
	return append(prefixed, key...)
}

// Put - stage a key/value write in the innermost open session; visible
// to Get immediately, durable once Session.Commit flushes that session.
// With no session open it is written to goleveldb at once.
func (p *PoolHandle) Put(key []byte, value []byte) {
	p.store.put(p.prefixKey(key), value)
}

// PutN - store an 8-byte big endian counter
func (p *PoolHandle) PutN(key []byte, n uint64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	p.Put(key, buf)
}

// Delete - stage a key removal
func (p *PoolHandle) Delete(key []byte) {
	p.store.delete(p.prefixKey(key))
}

// Get - read the current value for key, including any staged but
// uncommitted writes from open sessions
func (p *PoolHandle) Get(key []byte) []byte {
	v, ok := p.store.get(p.prefixKey(key))
	if !ok {
		return nil
	}
	return v
}

// GetN - read an 8-byte big endian counter
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	v := p.Get(key)
	if nil == v || len(v) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(v[:8]), true
}

// Has - check whether key currently has a value
func (p *PoolHandle) Has(key []byte) bool {
	return nil != p.Get(key)
}

// NewFetchCursor - a cursor over this pool's key range, starting at
// the beginning of the prefix
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool: p,
		keyRange: ldb_util.Range{
			Start: []byte{p.prefix},
			Limit: p.limit,
		},
	}
}

// rawDBGet - bypass the overlay, read straight from goleveldb; used by
// Store.getLocked once no open session and no cache entry holds the key
func rawDBGet(db *leveldb.DB, key []byte) ([]byte, bool) {
	if nil == db {
		return nil, false
	}
	v, err := db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, false
	}
	if nil != err {
		return nil, false
	}
	return v, true
}
