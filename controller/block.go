// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/constants"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/signal"
	"github.com/bitmark-inc/chaincore/util"
)

// wrapBlockLocked - derive a candidate BlockState's schedule and
// irreversibility bookkeeping from its parent (spec §4.1 add():
// "wraps the block into a BlockState"). The parent must already be
// registered in the fork database.
func (c *Controller) wrapBlockLocked(block *chainblock.Block) (*chainblock.BlockState, error) {
	parent, err := c.forks.GetBlock(block.Header.Previous)
	if nil != err {
		return nil, err
	}

	bs := &chainblock.BlockState{
		Block:                    block,
		Id:                       block.Header.Id(),
		ActiveSchedule:           parent.ActiveSchedule,
		PendingSchedule:          parent.PendingSchedule,
		PendingScheduleBlockNum:  parent.PendingScheduleBlockNum,
		ProducerLastProduced:     copyLastProduced(parent.ProducerLastProduced),
		DposIrreversibleBlockNum: parent.DposIrreversibleBlockNum,
		BftIrreversibleBlockNum:  parent.BftIrreversibleBlockNum,
	}

	if nil != block.Header.NewProducers {
		schedule := *block.Header.NewProducers
		bs.PendingSchedule = &schedule
		bs.PendingScheduleBlockNum = block.Number()
	}

	if nil != block.Header.Producer {
		if nil == bs.ProducerLastProduced {
			bs.ProducerLastProduced = make(map[string]uint64)
		}
		bs.ProducerLastProduced[block.Header.Producer.String()] = block.Number()
	}
	bs.DposIrreversibleBlockNum = dposIrreversibleThreshold(bs.ActiveSchedule, bs.ProducerLastProduced)

	return bs, nil
}

// PushBlock - spec §4.5 push_block(signed_block, trust). Requires no
// pending block; wraps, registers with the fork database, then lets
// maybe_switch_forks decide whether this changes the current chain.
func (c *Controller) PushBlock(block *chainblock.Block, trust bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nil != c.pending {
		return fault.ErrPendingAlreadyOpen
	}

	bs, err := c.wrapBlockLocked(block)
	if nil != err {
		return err
	}

	inserted, err := c.forks.Add(bs, trust)
	if nil != err {
		return err
	}
	c.bus.Emit(signal.AcceptedBlockHeader, inserted)

	return c.maybeSwitchForksLocked(inserted, trust)
}

// ApplyBlock - spec §4.5 apply_block(signed_block, trust): replay
// candidate's own transactions through a fresh pending block, then
// finalize/sign/commit it without re-adding to the fork database
// (candidate is already registered there by push_block). Any failure
// aborts the half-built pending block and rethrows.
func (c *Controller) ApplyBlock(candidate *chainblock.BlockState, trust bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyBlockLocked(candidate, trust)
}

func (c *Controller) applyBlockLocked(candidate *chainblock.BlockState, trust bool) (err error) {
	if err = c.startBlockLocked(candidate.Block.Header.Timestamp, constants.DefaultConfirmationCount, candidate.Block.Header.Producer); nil != err {
		return err
	}
	defer func() {
		if nil != err {
			c.abortBlockLocked()
		}
	}()

	p := c.pending
	originalHeader := candidate.Block.Header

	p.block.Block.Header = originalHeader
	p.block.ActiveSchedule = candidate.ActiveSchedule
	p.block.PendingSchedule = candidate.PendingSchedule
	p.block.PendingScheduleBlockNum = candidate.PendingScheduleBlockNum
	p.block.ProducerLastProduced = candidate.ProducerLastProduced
	p.block.DposIrreversibleBlockNum = candidate.DposIrreversibleBlockNum
	p.block.BftIrreversibleBlockNum = candidate.BftIrreversibleBlockNum

	for _, receipt := range candidate.Block.Receipts {
		if nil == receipt.Trx {
			continue
		}
		if _, err = c.pushTransactionLocked(receipt.Trx, time.Time{}, false); nil != err {
			return err
		}
	}

	if err = c.finalizeBlockLocked(); nil != err {
		return err
	}
	if p.block.Id != candidate.Id {
		err = fault.ErrMerkleRootMismatch
		return err
	}

	signFn := func(_ []byte) (account.Signature, error) {
		return originalHeader.ProducerSignature, nil
	}
	if err = c.signBlockLocked(signFn, trust); nil != err {
		return err
	}

	if err = c.commitBlockLocked(false); nil != err {
		return err
	}
	return nil
}

// maybeSwitchForksLocked - spec §4.5 maybe_switch_forks(trust). Since
// this package's fork database only admits validated blocks into head
// selection (forkdb.SetValidity), newHead is the just-registered
// candidate itself rather than a re-query of forks.Head(). A candidate
// that does not extend head only triggers a reorg when it ranks ahead
// of head in forkdb's head ordering; otherwise head stays put.
func (c *Controller) maybeSwitchForksLocked(newHead *chainblock.BlockState, trust bool) error {
	switch {
	case newHead.Previous() == c.head.Id:
		if err := c.applyBlockLocked(newHead, trust); nil != err {
			c.forks.SetValidity(newHead, false)
			return err
		}
		c.forks.SetValidity(newHead, true)
		c.forks.MarkInCurrentChain(newHead, true)
		c.head = newHead
		return nil

	case newHead.Id == c.head.Id:
		return nil

	default:
		a, h := newHead, c.head
		ahead := a.DposIrreversibleBlockNum > h.DposIrreversibleBlockNum ||
			a.DposIrreversibleBlockNum == h.DposIrreversibleBlockNum && (a.Number() > h.Number() ||
				a.Number() == h.Number() && (a.Block.Header.Timestamp.Before(h.Block.Header.Timestamp) ||
					a.Block.Header.Timestamp.Equal(h.Block.Header.Timestamp) && a.Id.String() < h.Id.String()))
		if !ahead {
			return nil
		}
		return c.reorgLocked(newHead)
	}
}

// reorgLocked - spec §4.5 case 3 (reorg). popBranch and applyBranch
// are both in descendant→ancestor order (forkdb.FetchBranchFrom); pop
// popBranch as-is, replay applyBranch reversed. A mid-replay failure
// reverses the whole operation so head ends up exactly where it
// started (spec §7 propagation policy, §8 boundary scenario 6).
func (c *Controller) reorgLocked(newHead *chainblock.BlockState) error {
	applyBranch, popBranch, err := c.forks.FetchBranchFrom(newHead.Id, c.head.Id)
	if nil != err {
		return err
	}

	util.LogWarn(c.log, util.CoYellow, fmt.Sprintf(
		"reorg: switching head from %s (#%d) to %s (#%d), popping %d block(s)",
		c.head.Id, c.head.Number(), newHead.Id, newHead.Number(), len(popBranch)))

	for range popBranch {
		if err := c.popBlockLocked(); nil != err {
			return err
		}
	}
	if 0 != len(popBranch) && c.head.Id != popBranch[len(popBranch)-1].Previous() {
		return fault.ErrForkSwitchDesync
	}
	c.metrics.observeReorgDepth(len(popBranch))

	applied := make([]*chainblock.BlockState, 0, len(applyBranch))
	var replayErr error
	failedIdx := -1
	for i := len(applyBranch) - 1; i >= 0; i-- {
		candidate := applyBranch[i]
		if err := c.applyBlockLocked(candidate, false); nil != err {
			replayErr = err
			failedIdx = i
			break
		}
		c.forks.SetValidity(candidate, true)
		c.forks.MarkInCurrentChain(candidate, true)
		c.head = candidate
		applied = append(applied, candidate)
	}

	if nil == replayErr {
		return nil
	}

	for j := 0; j <= failedIdx; j++ {
		c.forks.SetValidity(applyBranch[j], false)
	}

	for range applied {
		if err := c.popBlockLocked(); nil != err {
			c.log.Criticalf("reorg recovery: pop failed: %s", err)
		}
	}

	for j := len(popBranch) - 1; j >= 0; j-- {
		candidate := popBranch[j]
		if err := c.applyBlockLocked(candidate, true); nil != err {
			c.log.Criticalf("reorg recovery: re-apply of previously valid block failed: %s", err)
			return err
		}
		c.forks.SetValidity(candidate, true)
		c.forks.MarkInCurrentChain(candidate, true)
		c.head = candidate
	}

	return replayErr
}

// popBlockLocked - spec §4.5 pop_block(): undo the current head's
// still-open session/savepoint (it cannot be irreversible yet, or it
// could never be popped at all) and step head back to its parent.
func (c *Controller) popBlockLocked() error {
	parent, err := c.forks.GetBlock(c.head.Previous())
	if nil != err {
		return fault.ErrPopBeyondIrreversible
	}
	if 0 == len(c.awaiting) || c.awaiting[len(c.awaiting)-1].blockNum != c.head.Number() {
		return fault.ErrPopBeyondIrreversible
	}

	for _, r := range c.head.Block.Receipts {
		if nil != r.Trx {
			c.pool.Put(r.Id.String(), r.Trx, r.Trx.Expiration)
		}
	}

	top := c.awaiting[len(c.awaiting)-1]
	if err := top.session.Undo(); nil != err {
		return err
	}
	if err := c.token.RollbackToLatestSavepoint(); nil != err {
		return err
	}
	if err := c.state.Retreat(parent.Number()); nil != err {
		return err
	}
	c.awaiting = c.awaiting[:len(c.awaiting)-1]

	c.forks.MarkInCurrentChain(c.head, false)
	c.head = parent
	c.metrics.blockPopped()
	return nil
}

// AddConfirmation - record an explicit BFT confirmation (spec §4.1
// add(confirmation)). Locked because forkdb.AddConfirmation may
// synchronously call back into onIrreversibleLocked.
func (c *Controller) AddConfirmation(id blockdigest.Digest, producer string, quorum int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.forks.AddConfirmation(id, producer, quorum); nil != err {
		return err
	}
	c.bus.Emit(signal.AcceptedConfirmation, id)
	return nil
}

// onIrreversibleLocked - spec §4.5 on_irreversible(bs). Registered
// with the fork database via SetIrreversibleCallback; always invoked
// with c.mu already held (from commitBlockLocked or AddConfirmation),
// so it must never lock itself.
func (c *Controller) onIrreversibleLocked(bs *chainblock.BlockState) {
	height, haveHead := c.blocklog.Height()
	lastLogged := int64(-1)
	if haveHead {
		lastLogged = int64(height)
	}

	switch {
	case int64(bs.Number())-1 == lastLogged:
		if err := c.blocklog.Append(bs); nil != err {
			c.log.Errorf("on_irreversible: append block %d failed: %s", bs.Number(), err)
		}
	case int64(bs.Number())-1 > lastLogged:
		c.log.Warnf("on_irreversible: gap in block log (head=%d, irreversible=%d)", lastLogged, bs.Number())
	}

	c.bus.Emit(signal.IrreversibleBlock, bs)

	c.flushAwaitingLocked(bs.Number())
}

// flushAwaitingLocked - spec §4.2 "every state-store commit(n) is
// paired with a token-store pop_savepoints(n)". Commit(n) flushes
// every still-open session from the bottom of the stack through the
// one tagged n (statestore.Session.Commit); PopSavepoints mirrors that
// on the token store in one call.
func (c *Controller) flushAwaitingLocked(n uint64) {
	idx := -1
	for i, entry := range c.awaiting {
		if entry.blockNum == n {
			idx = i
			break
		}
	}
	if -1 == idx {
		return
	}

	if err := c.awaiting[idx].session.Commit(n); nil != err {
		c.log.Criticalf("on_irreversible: state commit(%d) failed: %s", n, err)
		return
	}
	if err := c.token.PopSavepoints(n); nil != err {
		c.log.Criticalf("on_irreversible: token pop_savepoints(%d) failed: %s", n, err)
		return
	}

	c.awaiting = c.awaiting[idx+1:]
}
