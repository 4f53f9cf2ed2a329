// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/chaincore/controller"
	"github.com/bitmark-inc/chaincore/tokendb"
)

// stateSchema - the statestore.Store field layout this node opens.
// controller.StateSchema supplies the GlobalProperties slot; nothing
// else lives in the state store, since every domain/group/token/
// account record belongs to the token store instead.
type stateSchema struct {
	controller.StateSchema
}

// tokenSchema - the tokendb.Store field layout: one pool per index,
// matching tokendb's own domain/group/token/account split.
type tokenSchema struct {
	Domains  *tokendb.PoolHandle `prefix:"D"`
	Groups   *tokendb.PoolHandle `prefix:"G"`
	Tokens   *tokendb.PoolHandle `prefix:"T"`
	Accounts *tokendb.PoolHandle `prefix:"A"`
}
