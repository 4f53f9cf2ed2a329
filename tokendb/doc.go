// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tokendb - the domain/group/token/account store, the
// second of the controller's two coupled transactional stores.
//
// Unlike statestore's nested, anonymous undo sessions, tokendb's
// sessions are named savepoints tagged by an integer revision: the
// controller always opens a savepoint tagged with the state store's
// pre-block revision, and later either rolls back the single latest
// savepoint (mirroring a state-store undo) or pops every savepoint
// tagged at or below a committed revision (mirroring a state-store
// commit, flattening the staged writes to disk).
package tokendb
