// Copyright (c) 2014-2017 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package constants

import (
	"time"
)

// the default maximum lifetime a transaction's expiration may be set to,
// measured from the pending block time (spec §4.6 validate_expiration)
const (
	MaxTransactionLifetime = 60 * time.Minute
)

// how often the unapplied pool's dedup index is swept for entries whose
// expiration has passed
const (
	UnappliedSweepInterval = 5 * time.Minute
)

// number of slots in the BlockSummary ring (spec §3)
const (
	BlockSummarySlots = 65536
)

// confirm_count passed to start_block by apply_block's replay; the
// pending block records it, but DPoS irreversibility is computed from
// each producer's last produced block and does not read it
const (
	DefaultConfirmationCount = 0
)

// block production cadence and schedule sizing (spec §3, §4.5)
const (
	BlockInterval       = 500 * time.Millisecond
	MaxActiveProducers  = 21
	ProducerRepetitions = 12
)

// header/transaction version tags, bumped whenever the packed
// encoding changes shape
const (
	HeaderVersion      = 1
	TransactionVersion = 1
)
