// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unapplied - the dedup/pending transaction pool.
//
// A transaction enters the pool through Add, or through Put when
// push_transaction keeps it after a subjective failure or abort_block
// and pop_block hand it back. It leaves when push_transaction applies
// it or fails it objectively, or when its expiry passes first. The
// pool is an in-memory map behind a mutex, with a background sweep
// goroutine evicting expired entries on a timer, the same shape the
// teacher used for its in-memory mempool pools.
package unapplied
