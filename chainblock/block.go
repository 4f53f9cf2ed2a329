// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

// Block - a header plus the ordered transaction receipts it covers
type Block struct {
	Header   Header
	Receipts []TransactionReceipt
}

// Number - the block's height, taken from the header rather than
// stored separately; kept as a method (not a field) so there is only
// one place a block's height can ever be read from
func (b *Block) Number() uint64 {
	return b.Header.Number
}

// Transactions - the full transactions carried in this block's
// receipts, in order; a receipt whose Trx has been pruned is skipped
func (b *Block) Transactions() []*Transaction {
	txs := make([]*Transaction, 0, len(b.Receipts))
	for _, r := range b.Receipts {
		if nil != r.Trx {
			txs = append(txs, r.Trx)
		}
	}
	return txs
}

// NewBlock - assemble a block from its producer-supplied transactions,
// computing both merkle roots and leaving the header's Previous/Number
// for the caller (the controller owns chain linkage)
func NewBlock(header Header, txs []*Transaction) *Block {
	header.ActionMerkleRoot = ActionMerkleRoot(txs)
	header.TransactionMerkleRoot = TransactionMerkleRoot(txs)

	receipts := make([]TransactionReceipt, 0, len(txs))
	for _, tx := range txs {
		receipts = append(receipts, TransactionReceipt{
			Status: Executed,
			Id:     tx.SignedId(),
			Trx:    tx,
		})
	}
	return &Block{Header: header, Receipts: receipts}
}
