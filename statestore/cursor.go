// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statestore

import (
	"bytes"
	"sort"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// FetchCursor - forward scan over a pool's key range, merging
// committed goleveldb content with any still-open overlay writes so a
// session-in-progress sees its own staged changes
type FetchCursor struct {
	pool     *PoolHandle
	keyRange ldb_util.Range
}

// Seek - move the cursor to start at key
func (c *FetchCursor) Seek(key []byte) *FetchCursor {
	c.keyRange.Start = c.pool.prefixKey(key)
	return c
}

// Fetch - return up to count elements from the current position
func (c *FetchCursor) Fetch(count int) []Element {
	all := c.scan()
	if count > 0 && len(all) > count {
		all = all[:count]
	}
	if len(all) > 0 {
		next := make([]byte, len(all[len(all)-1].Key)+1)
		copy(next, all[len(all)-1].Key)
		next[len(next)-1] = 0
		c.keyRange.Start = c.pool.prefixKey(incremented(all[len(all)-1].Key))
	}
	return all
}

// Map - run f over every element in the cursor's range, in key order
func (c *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	for _, e := range c.scan() {
		if err := f(e.Key, e.Value); nil != err {
			return err
		}
	}
	return nil
}

func incremented(key []byte) []byte {
	next := make([]byte, len(key))
	copy(next, key)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if 0 != next[i] {
			return next
		}
	}
	return append(next, 0)
}

func (c *FetchCursor) scan() []Element {
	s := c.pool.store
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string][]byte)

	if nil != s.db {
		iter := s.db.NewIterator(&c.keyRange, nil)
		for iter.Next() {
			k := append([]byte(nil), iter.Key()...)
			v := append([]byte(nil), iter.Value()...)
			found[string(k)] = v
		}
		iter.Release()
	}

	for _, sess := range s.sessions {
		for k, v := range sess.overlay {
			if inRange(c.keyRange, []byte(k)) {
				found[k] = v
			}
		}
		for k := range sess.tombstoned {
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
		dataKey := []byte(k)[1:] // strip the prefix byte
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
