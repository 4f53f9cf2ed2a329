// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/chainblock"
)

// buildSignedBlock - an externally produced block extending previous,
// with no transactions, signed by producer.
func buildSignedBlock(t *testing.T, previous *chainblock.BlockState, when time.Time, producer *account.Account, signFn func([]byte) (account.Signature, error)) *chainblock.Block {
	t.Helper()
	header := chainblock.NewHeader(
		previous.Id,
		previous.Number()+1,
		when,
		producer,
		previous.ActiveSchedule.Version,
		nil,
		chainblock.ActionMerkleRoot(nil),
		chainblock.TransactionMerkleRoot(nil),
	)
	require.NoError(t, header.Sign(signFn))
	return &chainblock.Block{Header: *header}
}

func TestPushBlockFastPathExtendsHead(t *testing.T) {
	producer, signFn := newTestProducer(t, 10)
	h := newHarness(t, producer)
	defer h.teardown()

	genesis := h.c.Head()
	when := genesis.Block.Header.Timestamp.Add(time.Second)
	block := buildSignedBlock(t, genesis, when, producer, signFn)

	require.NoError(t, h.c.PushBlock(block, false))

	head := h.c.Head()
	assert.Equal(t, uint64(1), head.Number())
	assert.True(t, head.InCurrentChain)
	assert.False(t, h.c.HasPending())
}

func TestPushBlockRejectsBadSignature(t *testing.T) {
	producer, _ := newTestProducer(t, 11)
	_, wrongSignFn := newTestProducer(t, 12)
	h := newHarness(t, producer)
	defer h.teardown()

	genesis := h.c.Head()
	when := genesis.Block.Header.Timestamp.Add(time.Second)
	block := buildSignedBlock(t, genesis, when, producer, wrongSignFn)

	err := h.c.PushBlock(block, false)
	assert.Error(t, err)
	assert.Equal(t, uint64(0), h.c.Head().Number())
}

// TestPushBlockReorgSwitchesToEarlierTimestampedSibling builds a
// 3-producer schedule where only p0 ever actually produces through the
// harness's own StartBlock/FinalizeBlock/SignBlock/CommitBlock path, so
// dposIrreversibleThreshold (picking the lowest of three
// producer-last-produced values, two of which stay at zero) never
// clears genesis, and the committed block can still be popped by a
// reorg. A sibling block signed by a second producer, timestamped
// earlier than the current head, outranks it in forkdb's head
// ordering and triggers maybe_switch_forks's reorg branch.
func TestPushBlockReorgSwitchesToEarlierTimestampedSibling(t *testing.T) {
	p0, signFn0 := newTestProducer(t, 20)
	p1, signFn1 := newTestProducer(t, 21)
	p2, _ := newTestProducer(t, 22)
	h := newHarness(t, p0, p1, p2)
	defer h.teardown()

	genesis := h.c.Head()
	firstWhen := genesis.Block.Header.Timestamp.Add(10 * time.Second)

	require.NoError(t, h.c.StartBlock(firstWhen, 0, p0))
	require.NoError(t, h.c.FinalizeBlock())
	require.NoError(t, h.c.SignBlock(signFn0, false))
	require.NoError(t, h.c.CommitBlock(true))

	original := h.c.Head()
	require.Equal(t, uint64(1), original.Number())

	// sibling timestamped earlier than original: ranks ahead of it at
	// equal (dposIrreversible, blockNum)
	siblingWhen := firstWhen.Add(-time.Second)
	sibling := buildSignedBlock(t, genesis, siblingWhen, p1, signFn1)

	require.NoError(t, h.c.PushBlock(sibling, false))

	head := h.c.Head()
	assert.NotEqual(t, original.Id, head.Id)
	assert.Equal(t, uint64(1), head.Number())
	assert.True(t, head.InCurrentChain)
	assert.False(t, original.InCurrentChain)
}
