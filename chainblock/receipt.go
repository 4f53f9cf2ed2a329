// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"github.com/bitmark-inc/chaincore/merkle"
)

// ReceiptStatus - the outcome recorded for a transaction once it has
// gone through a transaction context
type ReceiptStatus int

const (
	// Executed - every action in the transaction completed
	Executed ReceiptStatus = iota
	// ExpiredReceipt - kept only so a popped block can explain why a
	// previously-applied transaction never makes it back into a
	// replacement block
	ExpiredReceipt
)

// TransactionReceipt - a block's record of one applied transaction
type TransactionReceipt struct {
	Status ReceiptStatus
	Id     merkle.Digest
	Trx    *Transaction // nil once the full transaction has been pruned to just its id
}

// ActionReceipt - the per-action bookkeeping accumulated by a
// transaction context as it executes a transaction, independent of
// the block-level TransactionReceipt
type ActionReceipt struct {
	Action Action
}
