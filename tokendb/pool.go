// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Element - a key/value pair returned by a cursor scan
type Element struct {
	Key   []byte
	Value []byte
}

// PoolHandle - a prefixed view of the token store, one per object
// kind (domains, groups, tokens, accounts)
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

// Put - stage a key/value write against the currently open savepoint
func (p *PoolHandle) Put(key []byte, value []byte) {
	p.store.put(p.prefixKey(key), value)
}

// Delete - stage a key removal
func (p *PoolHandle) Delete(key []byte) {
	p.store.delete(p.prefixKey(key))
}

// Get - read the current value for key, including any writes staged
// in still-open savepoints
func (p *PoolHandle) Get(key []byte) []byte {
	v, ok := p.store.get(p.prefixKey(key))
	if !ok {
		return nil
	}
	return v
}

// Has - check whether key currently has a value
func (p *PoolHandle) Has(key []byte) bool {
	return nil != p.Get(key)
}

// NewFetchCursor - a cursor over this pool's key range
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool: p,
		keyRange: ldb_util.Range{
			Start: []byte{p.prefix},
			Limit: p.limit,
		},
	}
}
