// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package genesis - the hard-coded genesis parameters for each chain.
//
// Unlike the teacher's proof-of-work genesis (a nonce pair and a
// message proving the block could not have been mined before a known
// date), a DPoS genesis only needs an initial producer key and an
// initial timestamp: block 1 is signed by that producer and every
// subsequent schedule change is recorded on-chain from there.
package genesis

import (
	"time"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/constants"
)

// BlockNumber - the fixed block number of every chain's genesis block
const BlockNumber = 1

// BlockVersion - the header version written into the genesis block
const BlockVersion = 1

// Data - the parameters needed to construct a genesis BlockState:
// initial producer key, initial timestamp, and initial chain
// configuration (spec §6, only consulted when no prior head exists)
type Data struct {
	Timestamp       time.Time
	InitialProducer *account.Account
	Message         string
	Configuration   chainblock.ChainConfiguration
}

// defaultConfiguration - the chain parameters For puts into every Data
// it returns
func defaultConfiguration() chainblock.ChainConfiguration {
	return chainblock.ChainConfiguration{
		MaxTransactionLifetime: constants.MaxTransactionLifetime,
		MaxActiveProducers:     constants.MaxActiveProducers,
		BlockInterval:          constants.BlockInterval,
	}
}

// chain specific timestamps
//
// date -u -r $(printf '%d\n' 0x56809ab7) '+%FT%TZ'  =>  2015-12-28T02:13:11Z
var liveTimestamp = time.Unix(0x56809ab7, 0).UTC()

// date -u -r $(printf '%d\n' 0x5478424b) '+%FT%TZ'
var testTimestamp = time.Unix(0x5478424b, 0).UTC()

// localTimestamp - fixed rather than time.Now(): a local chain's
// genesis must still be reproducible across restarts of the same node
// so a replayed block log lines up with a freshly rebuilt genesis
// BlockState.
var localTimestamp = time.Unix(0, 0).UTC()

// LiveGenesisMessage - the message signed into the mainnet genesis block
const LiveGenesisMessage = "DOWN the RABBIT hole"

// TestGenesisMessage - the message signed into the testing chain's genesis block
const TestGenesisMessage = "REPLICATE A SMALL SHARE"

// LiveGenesisTimestamp - mainnet genesis timestamp
func LiveGenesisTimestamp() time.Time { return liveTimestamp }

// TestGenesisTimestamp - testing chain genesis timestamp
func TestGenesisTimestamp() time.Time { return testTimestamp }

// For - the genesis parameters for a chain name, with the chain's
// initial producer key already parsed; any name other than "mainnet"
// and "testing", "local" included, gets the fixed local timestamp
func For(chainName string, initialProducer *account.Account) (Data, error) {
	switch chainName {
	case "mainnet":
		return Data{
			Timestamp:       liveTimestamp,
			InitialProducer: initialProducer,
			Message:         LiveGenesisMessage,
			Configuration:   defaultConfiguration(),
		}, nil
	case "testing":
		return Data{
			Timestamp:       testTimestamp,
			InitialProducer: initialProducer,
			Message:         TestGenesisMessage,
			Configuration:   defaultConfiguration(),
		}, nil
	default:
		return Data{
			Timestamp:       localTimestamp,
			InitialProducer: initialProducer,
			Message:         "local development chain",
			Configuration:   defaultConfiguration(),
		}, nil
	}
}
