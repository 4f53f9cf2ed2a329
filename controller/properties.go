// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"encoding/json"

	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/statestore"
)

// StateSchema - the statestore.Store field layout the controller
// itself needs. Callers pass a struct embedding this (or with an
// equivalent field) to statestore.Open; the domain contract's own
// object pools (accounts, tokens, ...) live in additional fields the
// controller never touches.
type StateSchema struct {
	Properties *statestore.PoolHandle `prefix:"P"`
}

var globalPropertiesKey = []byte("global")

// PropertiesStore - the GlobalProperties singleton (spec §3), backed
// by the same PoolHandle/undo-session machinery as every other
// indexed object so a schedule proposal rolls back exactly like any
// other pending-block write.
type PropertiesStore struct {
	pool *statestore.PoolHandle
}

// NewPropertiesStore - wrap an already-bound PoolHandle (StateSchema.Properties)
func NewPropertiesStore(pool *statestore.PoolHandle) *PropertiesStore {
	return &PropertiesStore{pool: pool}
}

// Get - the current global properties, or ok=false if never written
// (e.g. before startup's genesis init has run)
func (s *PropertiesStore) Get() (chainblock.GlobalProperties, bool) {
	raw := s.pool.Get(globalPropertiesKey)
	if nil == raw {
		return chainblock.GlobalProperties{}, false
	}
	var props chainblock.GlobalProperties
	if err := json.Unmarshal(raw, &props); nil != err {
		return chainblock.GlobalProperties{}, false
	}
	return props, true
}

// Put - stage the new singleton value; visible immediately, durable
// once the enclosing undo session commits
func (s *PropertiesStore) Put(props chainblock.GlobalProperties) error {
	raw, err := json.Marshal(props)
	if nil != err {
		return err
	}
	s.pool.Put(globalPropertiesKey, raw)
	return nil
}
