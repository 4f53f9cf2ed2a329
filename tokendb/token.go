// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"encoding/json"

	"github.com/bitmark-inc/chaincore/fault"
)

// TokenIndex - a typed view over a token PoolHandle, keyed by
// "domain:id" so a domain's tokens sort contiguously
type TokenIndex struct {
	pool *PoolHandle
}

// NewTokenIndex - wrap a bound PoolHandle as a TokenIndex
func NewTokenIndex(pool *PoolHandle) *TokenIndex {
	return &TokenIndex{pool: pool}
}

func tokenKey(domain, id string) []byte {
	return []byte(domain + ":" + id)
}

// Put - issue or transfer a token by overwriting its owner
func (idx *TokenIndex) Put(token Token) error {
	buf, err := json.Marshal(token)
	if nil != err {
		return err
	}
	idx.pool.Put(tokenKey(token.Domain, token.Id), buf)
	return nil
}

// Get - look up a token by domain and id
func (idx *TokenIndex) Get(domain, id string) (Token, error) {
	raw := idx.pool.Get(tokenKey(domain, id))
	if nil == raw {
		return Token{}, fault.ErrTransactionNotFound
	}
	var token Token
	if err := json.Unmarshal(raw, &token); nil != err {
		return Token{}, err
	}
	return token, nil
}

// Owner - the current owner key of a token, used by the owner
// resolver when checking a transfer action's authority (spec §4.3)
func (idx *TokenIndex) Owner(domain, id string) (string, error) {
	token, err := idx.Get(domain, id)
	if nil != err {
		return "", err
	}
	return token.Owner, nil
}
