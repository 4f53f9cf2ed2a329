// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"encoding/json"

	"github.com/bitmark-inc/chaincore/fault"
)

// GroupIndex - a typed view over a group PoolHandle
type GroupIndex struct {
	pool *PoolHandle
}

// NewGroupIndex - wrap a bound PoolHandle as a GroupIndex
func NewGroupIndex(pool *PoolHandle) *GroupIndex {
	return &GroupIndex{pool: pool}
}

// Put - create or replace a named group's authority tree
func (idx *GroupIndex) Put(group Group) error {
	buf, err := json.Marshal(group)
	if nil != err {
		return err
	}
	idx.pool.Put([]byte(group.Name), buf)
	return nil
}

// Get - look up a group by name
func (idx *GroupIndex) Get(name string) (Group, error) {
	raw := idx.pool.Get([]byte(name))
	if nil == raw {
		return Group{}, fault.ErrGroupNotFound
	}
	var group Group
	if err := json.Unmarshal(raw, &group); nil != err {
		return Group{}, err
	}
	return group, nil
}

// Delete - remove a group
func (idx *GroupIndex) Delete(name string) {
	idx.pool.Delete([]byte(name))
}
