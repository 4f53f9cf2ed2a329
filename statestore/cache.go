// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statestore

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// readCache - read-through cache in front of goleveldb, avoiding a
// disk round trip for the hot working set of recently committed keys
type readCache interface {
	get(key string) ([]byte, bool)
	set(key string, value []byte)
	delete(key string)
	clear()
}

const (
	cacheDefaultTimeout    = 1 * time.Minute
	cacheDefaultExpiration = 5 * time.Minute
)

type tombstone struct{}

type goCache struct {
	c *cache.Cache
}

func newReadCache() readCache {
	return &goCache{c: cache.New(cacheDefaultExpiration, cacheDefaultTimeout)}
}

func (g *goCache) get(key string) ([]byte, bool) {
	obj, found := g.c.Get(key)
	if !found {
		return nil, false
	}
	if _, deleted := obj.(tombstone); deleted {
		return nil, false
	}
	return obj.([]byte), true
}

func (g *goCache) set(key string, value []byte) {
	g.c.Set(key, value, cacheDefaultExpiration)
}

func (g *goCache) delete(key string) {
	g.c.Set(key, tombstone{}, cacheDefaultExpiration)
}

func (g *goCache) clear() {
	g.c.Flush()
}
