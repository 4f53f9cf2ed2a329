// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txcontext

import (
	"time"

	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
)

// HandlerFunc - an apply handler: the domain logic that mutates state
// in response to one action, executing within the controller's
// already-open undo session so its effects are captured by the
// pending-block rollback (spec §4.4)
type HandlerFunc func(ctx *Context, action chainblock.Action) error

// HandlerLookup - resolves an action name to its handler; satisfied
// by applyhandler.Registry
type HandlerLookup interface {
	Find(name string) (HandlerFunc, bool)
}

// Trace - the billing/outcome record returned by Finalize
type Trace struct {
	NetUsage int
	CPUUsage int
	Actions  []chainblock.ActionReceipt
	Except   error
}

// Context - executes one transaction
type Context struct {
	Trx            *chainblock.Transaction
	Implicit       bool
	SignatureCount int
	Deadline       time.Time

	lookup   HandlerLookup
	receipts []chainblock.ActionReceipt
}

// NewImplicit - a context for a transaction with no signatures (block
// production internals, not a user-submitted input transaction)
func NewImplicit(trx *chainblock.Transaction, lookup HandlerLookup, deadline time.Time) *Context {
	return &Context{Trx: trx, Implicit: true, lookup: lookup, Deadline: deadline}
}

// NewInput - a context for a user-submitted transaction carrying
// signatureCount signatures
func NewInput(trx *chainblock.Transaction, signatureCount int, lookup HandlerLookup, deadline time.Time) *Context {
	return &Context{Trx: trx, Implicit: false, SignatureCount: signatureCount, lookup: lookup, Deadline: deadline}
}

// Exec - run every action in declared order, checking the deadline
// before each one; a missing handler is a fatal invariant violation,
// not a recoverable failure (spec §4.4)
func (c *Context) Exec() error {
	for _, action := range c.Trx.Actions {
		if !c.Deadline.IsZero() && time.Now().After(c.Deadline) {
			return fault.ErrDeadlineExceeded
		}
		handler, ok := c.lookup.Find(action.Name)
		if !ok {
			return fault.ErrNoApplyHandler
		}
		if err := handler(c, action); nil != err {
			return err
		}
		c.receipts = append(c.receipts, chainblock.ActionReceipt{Action: action})
	}
	return nil
}

// Finalize - compute network/CPU billing, reported only in the trace;
// billing here is a simple proxy (action count, byte count) since the
// concrete cost model is a domain-contract concern out of this core's
// scope
func (c *Context) Finalize() Trace {
	net := 0
	for _, r := range c.receipts {
		net += len(r.Action.Payload)
	}
	return Trace{
		NetUsage: net,
		CPUUsage: len(c.receipts),
		Actions:  c.receipts,
	}
}
