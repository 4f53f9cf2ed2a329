// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package controller - the block lifecycle nucleus: start_block,
// push_transaction, finalize_block, sign_block, commit_block,
// abort_block, push_block, apply_block, maybe_switch_forks, pop_block,
// on_irreversible (spec §4.5), plus the validation utilities of §4.6.
//
// The controller is single-threaded for mutation (spec §5): every
// exported method that touches pending or head state takes the same
// mutex. It owns no storage of its own; the state store, token store,
// fork database, block log, unapplied pool, apply handler registry
// and authorization callbacks are all injected, following the
// teacher's own preference for small, explicitly-wired components
// over package-level globals.
package controller
