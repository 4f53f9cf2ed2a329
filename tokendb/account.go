// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"encoding/json"

	"github.com/bitmark-inc/chaincore/fault"
)

// AccountIndex - a typed view over the special "account" domain's
// PoolHandle; the owner resolver consults this one directly instead
// of TokenIndex (spec §4.3: "owner resolver for the special domain
// account (returns the account owner) and for all other domains
// (returns the token owner)")
type AccountIndex struct {
	pool *PoolHandle
}

// NewAccountIndex - wrap a bound PoolHandle as an AccountIndex
func NewAccountIndex(pool *PoolHandle) *AccountIndex {
	return &AccountIndex{pool: pool}
}

// Put - create or replace an account holder's owner key
func (idx *AccountIndex) Put(holder AccountHolder) error {
	buf, err := json.Marshal(holder)
	if nil != err {
		return err
	}
	idx.pool.Put([]byte(holder.Name), buf)
	return nil
}

// Get - look up an account holder by name
func (idx *AccountIndex) Get(name string) (AccountHolder, error) {
	raw := idx.pool.Get([]byte(name))
	if nil == raw {
		return AccountHolder{}, fault.ErrAccountNotFound
	}
	var holder AccountHolder
	if err := json.Unmarshal(raw, &holder); nil != err {
		return AccountHolder{}, err
	}
	return holder, nil
}

// Owner - the owning key for an account holder name
func (idx *AccountIndex) Owner(name string) (string, error) {
	holder, err := idx.Get(name)
	if nil != err {
		return "", err
	}
	return holder.Owner, nil
}
