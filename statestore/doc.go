// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package statestore - the indexed object store backing the chain
// state, with nested undo sessions and a monotonically increasing
// revision number.
//
// Keys live in a single goleveldb database split into pools the same
// way the original storage package split its two databases: each pool
// gets a single byte prefix taken from the `prefix` struct tag so the
// key space stays spread out inside one LSM tree.
//
// While a session is open, writes never touch goleveldb directly. They
// land in the innermost session's own in-memory overlay (deletes in its
// tombstone set), so Session.Undo simply discards that overlay and reads
// fall back to the sessions below it and the database. Session.Squash
// folds a session's overlay into its parent's. Session.Commit flushes a
// session and every session below it in a single batch covering every
// pool, raising Revision() to the caller-supplied block number if it is
// not already past it. With no session open, a write goes straight to
// goleveldb.
package statestore
