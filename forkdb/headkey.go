// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forkdb

import (
	"time"
)

// headKey - the avl.Item ordering key for head selection. Compare
// returns +1 when the receiver ranks strictly better than other, so
// that avl.Tree.Last() is always the current best head (spec §4.1:
// "Tie-breaks in order: higher dpos_irreversible_blocknum; then
// higher block number; then earlier timestamp; then lexicographically
// smaller id.")
type headKey struct {
	dposIrreversible uint64
	blockNum         uint64
	timestamp        time.Time
	id               string
}

func (k headKey) Compare(other interface{}) int {
	o := other.(headKey)

	if k.dposIrreversible != o.dposIrreversible {
		if k.dposIrreversible > o.dposIrreversible {
			return 1
		}
		return -1
	}
	if k.blockNum != o.blockNum {
		if k.blockNum > o.blockNum {
			return 1
		}
		return -1
	}
	if !k.timestamp.Equal(o.timestamp) {
		if k.timestamp.Before(o.timestamp) {
			return 1
		}
		return -1
	}
	if k.id != o.id {
		if k.id < o.id {
			return 1
		}
		return -1
	}
	return 0
}
