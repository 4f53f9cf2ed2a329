// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/blocklog"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/controller"
	"github.com/bitmark-inc/chaincore/forkdb"
	"github.com/bitmark-inc/chaincore/genesis"
)

// buildGenesisBlockState - the BlockState a fresh fork database is
// seeded with: a single-producer schedule of just data.InitialProducer,
// no previous block, at genesis.BlockNumber.
func buildGenesisBlockState(data genesis.Data) *chainblock.BlockState {
	schedule := chainblock.ProducerSchedule{
		Version: genesis.BlockVersion,
		Producers: []chainblock.ProducerScheduleEntry{
			{Producer: data.InitialProducer, Weight: 1},
		},
	}

	header := chainblock.NewHeader(
		blockdigest.Digest{},
		genesis.BlockNumber,
		data.Timestamp,
		data.InitialProducer,
		genesis.BlockVersion,
		nil,
		chainblock.ActionMerkleRoot(nil),
		chainblock.TransactionMerkleRoot(nil),
	)

	block := chainblock.NewBlock(*header, nil)

	return &chainblock.BlockState{
		Block:                block,
		Id:                   header.Id(),
		ActiveSchedule:       schedule,
		ProducerLastProduced: make(map[string]uint64),
		InCurrentChain:       true,
		Validated:            true,
	}
}

// replayBlockLog - rebuild the fork database's current chain from a
// previously appended block log, pushing every recorded block through
// the same PushBlock path a peer-supplied block would take (trusted,
// since it is this node's own prior output).
func replayBlockLog(c *controller.Controller, log *blocklog.Store, forks *forkdb.ForkDB) error {
	height, ok := log.Height()
	if !ok {
		return nil
	}
	head, err := forks.Head()
	if nil != err {
		return err
	}
	for n := head.Number() + 1; n <= height; n++ {
		block, _, err := log.ReadByNum(n)
		if nil != err {
			return err
		}
		if err := c.PushBlock(block, true); nil != err {
			return err
		}
	}
	return nil
}
