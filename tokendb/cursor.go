// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"bytes"
	"sort"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// FetchCursor - forward scan over a pool's key range, merging
// committed goleveldb content with every open savepoint's staged
// writes, oldest savepoint first so newer writes win
type FetchCursor struct {
	pool     *PoolHandle
	keyRange ldb_util.Range
}

// Fetch - return up to count elements from the current range
func (c *FetchCursor) Fetch(count int) []Element {
	all := c.scan()
	if count > 0 && len(all) > count {
		all = all[:count]
	}
	return all
}

func (c *FetchCursor) scan() []Element {
	s := c.pool.store
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string][]byte)

	iter := s.db.NewIterator(&c.keyRange, nil)
	for iter.Next() {
		k := append([]byte(nil), iter.Key()...)
		v := append([]byte(nil), iter.Value()...)
		found[string(k)] = v
	}
	iter.Release()

	for _, sp := range s.savepoints {
		for k, v := range sp.overlay {
			if inRange(c.keyRange, []byte(k)) {
				found[k] = v
			}
		}
		for k := range sp.tombstoned {
			if inRange(c.keyRange, []byte(k)) {
				delete(found, k)
			}
		}
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	elements := make([]Element, 0, len(keys))
	for _, k := range keys {
		dataKey := []byte(k)[1:]
		elements = append(elements, Element{Key: dataKey, Value: found[k]})
	}
	return elements
}

func inRange(r ldb_util.Range, key []byte) bool {
	if nil != r.Start && bytes.Compare(key, r.Start) < 0 {
		return false
	}
	if nil != r.Limit && bytes.Compare(key, r.Limit) >= 0 {
		return false
	}
	return true
}
