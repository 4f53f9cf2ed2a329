// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"time"

	"github.com/bitmark-inc/chaincore/authz"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/signal"
	"github.com/bitmark-inc/chaincore/txcontext"
)

// PushTransaction - spec §4.5 push_transaction(trx, deadline, implicit).
//
// A transaction leaves a footprint on pending.receipts/trxs/actions
// iff it executed without error (spec §3 invariant 5); the
// block-restore guard enforces that by only being cancelled on
// success, so any other exit path truncates the three slices back to
// their pre-transaction sizes even though the outer undo session
// stays open and keeps whatever the handlers already wrote to the
// state/token stores.
//
// A pre-exec failure (expired, bad TaPoS reference, missing
// signatures) is folded into the returned trace's Except field exactly
// like a failure raised during Exec, rather than returned as a bare
// error: spec §4.5 step 9 removes a transaction from the unapplied
// pool on any *objective* failure, pre-exec included, so both paths
// have to reach the same pool-classification step below.
func (c *Controller) PushTransaction(trx *chainblock.Transaction, deadline time.Time, implicit bool) (txcontext.Trace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushTransactionLocked(trx, deadline, implicit)
}

func (c *Controller) pushTransactionLocked(trx *chainblock.Transaction, deadline time.Time, implicit bool) (txcontext.Trace, error) {
	if nil == c.pending {
		return txcontext.Trace{}, fault.ErrNoPendingState
	}

	var (
		ctx   *txcontext.Context
		trace txcontext.Trace
	)

	execErr := c.validateExpiration(trx)
	if nil == execErr {
		execErr = c.validateTapos(trx)
	}
	if nil == execErr {
		if implicit {
			ctx = txcontext.NewImplicit(trx, c.handlers, deadline)
		} else {
			var checker *authz.Checker
			checker, execErr = c.authorizationChecker(trx)
			if nil == execErr {
				for _, action := range trx.Actions {
					satisfied, err := checker.Satisfied(action)
					if nil != err {
						execErr = err
						break
					}
					if !satisfied {
						execErr = fault.ErrTxMissingSigs
						break
					}
				}
			}
			if nil == execErr {
				ctx = txcontext.NewInput(trx, len(trx.Signatures), c.handlers, deadline)
			}
		}
	}

	if nil != ctx {
		execErr = ctx.Exec()
		trace = ctx.Finalize()
	}
	if nil != execErr {
		trace.Except = execErr
	}

	signedId := trx.SignedId()
	signedIdHex := signedId.String()

	p := c.pending
	rp := p.snapshot()
	guard := NewGuard(func() { p.truncateTo(rp) })
	defer guard.Release()

	if nil == execErr {
		p.receipts = append(p.receipts, chainblock.TransactionReceipt{
			Status: chainblock.Executed,
			Id:     signedId,
			Trx:    trx,
		})
		if !implicit {
			p.trxs = append(p.trxs, chainblock.AppliedTransaction{
				Id:         trx.Id().String(),
				SignedId:   signedIdHex,
				Expiration: trx.Expiration.Unix(),
			})
		}
		p.actions = append(p.actions, trx.Actions...)

		c.bus.Emit(signal.AcceptedTransaction, trx)
		c.bus.Emit(signal.AppliedTransaction, trace)

		guard.Cancel()
	}

	switch {
	case nil == execErr:
		c.pool.Remove(signedIdHex)
		c.metrics.transactionApplied()
	case fault.IsObjective(execErr):
		c.pool.Remove(signedIdHex)
		c.metrics.transactionObjectiveFailure()
	default:
		c.pool.Put(signedIdHex, trx, trx.Expiration)
		c.metrics.transactionSubjectiveFailure()
	}

	return trace, nil
}

// authorizationChecker - build a Checker over the keys recovered from
// trx's signatures (spec §4.5 step 2); a signature that fails
// verification is reported as the objective fault.ErrTxMissingSigs
func (c *Controller) authorizationChecker(trx *chainblock.Transaction) (*authz.Checker, error) {
	keys, err := trx.RecoveredKeys()
	if nil != err {
		return nil, fault.ErrTxMissingSigs
	}
	candidates := make([]string, 0, len(keys))
	for _, k := range keys {
		candidates = append(candidates, k.String())
	}
	return authz.New(candidates, c.domainAuthority, c.group, c.owner), nil
}
