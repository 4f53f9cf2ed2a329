// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package forkdb - the in-memory DAG of chainblock.BlockState,
// tracking head by longest-valid-branch with tie-breaks and emitting
// an irreversible event as the DPoS/BFT irreversibility frontier
// advances (spec §4.1).
//
// Head selection is kept in an avl.Tree (the teacher's own balanced
// tree package) rather than a plain scan: every validated BlockState
// is a node keyed by the tie-break tuple, so head() is always the
// tree's last (greatest) entry and insertion/removal stays O(log n)
// as competing branches come and go.
package forkdb
