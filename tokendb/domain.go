// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"encoding/json"

	"github.com/bitmark-inc/chaincore/fault"
)

// DomainIndex - a typed view over a domain PoolHandle
type DomainIndex struct {
	pool *PoolHandle
}

// NewDomainIndex - wrap a bound PoolHandle (see Open) as a DomainIndex
func NewDomainIndex(pool *PoolHandle) *DomainIndex {
	return &DomainIndex{pool: pool}
}

// Put - create or replace a domain's authority trees
func (idx *DomainIndex) Put(domain Domain) error {
	buf, err := json.Marshal(domain)
	if nil != err {
		return err
	}
	idx.pool.Put([]byte(domain.Name), buf)
	return nil
}

// Get - look up a domain by name
func (idx *DomainIndex) Get(name string) (Domain, error) {
	raw := idx.pool.Get([]byte(name))
	if nil == raw {
		return Domain{}, fault.ErrDomainNotFound
	}
	var domain Domain
	if err := json.Unmarshal(raw, &domain); nil != err {
		return Domain{}, err
	}
	return domain, nil
}

// Has - whether a domain with the given name exists
func (idx *DomainIndex) Has(name string) bool {
	return idx.pool.Has([]byte(name))
}

// Delete - remove a domain
func (idx *DomainIndex) Delete(name string) {
	idx.pool.Delete([]byte(name))
}
