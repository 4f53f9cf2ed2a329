// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import "time"

// ChainConfiguration - the subset of chain-wide parameters the
// controller consults while sequencing blocks; stored as part of
// GlobalProperties so a schedule or parameter change is itself just
// another committed revision
type ChainConfiguration struct {
	MaxTransactionLifetime time.Duration
	MaxActiveProducers     int
	BlockInterval          time.Duration
}

// GlobalProperties - the chain's singleton configuration row plus a
// pending producer-schedule proposal, if any
type GlobalProperties struct {
	Configuration ChainConfiguration

	// ProposedScheduleBlockNum - the block number at which
	// ProposedSchedule was proposed; zero means no schedule is pending
	ProposedScheduleBlockNum uint64
	ProposedSchedule         *ProducerSchedule
}

// HasProposedSchedule - whether a schedule change is awaiting promotion
func (g *GlobalProperties) HasProposedSchedule() bool {
	return nil != g.ProposedSchedule && 0 != g.ProposedScheduleBlockNum
}
