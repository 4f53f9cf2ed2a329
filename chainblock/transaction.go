// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"encoding/binary"
	"time"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/merkle"
)

// TxSignature - a signer/signature pair carried on a transaction.
//
// ED25519 has no signature-based public-key recovery (unlike the
// secp256k1 scheme this controller's ancestor used), so "the keys
// recovered from the transaction's signatures" is modeled here as an
// explicit list of candidate signer accounts paired with their
// signatures; recovery becomes verification against that list rather
// than a cryptographic recovery step. See DESIGN.md.
type TxSignature struct {
	Signer    *account.Account
	Signature account.Signature
}

// Transaction - an ordered list of actions, TaPoS reference fields
// and an expiration, carrying zero or more signatures
type Transaction struct {
	Expiration    time.Time
	RefBlockNum   uint32
	RefBlockPrefix uint32
	Actions       []Action
	Signatures    []TxSignature
}

// body - the byte encoding of every field except signatures, used for
// both Id() and as the message each signature is checked against
func (tx *Transaction) body() []byte {
	buf := make([]byte, 0, 64)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(tx.Expiration.UTC().UnixNano()))
	buf = append(buf, tmp[:]...)
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], tx.RefBlockNum)
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], tx.RefBlockPrefix)
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(tx.Actions)))
	buf = append(buf, tmp4[:]...)
	for _, a := range tx.Actions {
		d := a.digest()
		buf = append(buf, d[:]...)
	}
	return buf
}

// Id - the unsigned transaction digest; this is the id used for
// duplicate detection, TaPoS lookups and the deadline/expiration
// checks, and is the message every signature must verify against
func (tx *Transaction) Id() merkle.Digest {
	return merkle.NewDigest(tx.body())
}

// SignedId - the digest folded into the transaction-merkle root,
// binding the signatures into the block's id chain
func (tx *Transaction) SignedId() merkle.Digest {
	buf := tx.body()
	for _, s := range tx.Signatures {
		buf = appendLP(buf, s.Signer.Bytes())
		buf = appendLP(buf, []byte(s.Signature))
	}
	return merkle.NewDigest(buf)
}

// RecoveredKeys - the signer accounts whose signature verifies against
// Id(); a signature that fails verification, or has no signer, makes
// the whole call fail with fault.ErrInvalidSignature
func (tx *Transaction) RecoveredKeys() ([]*account.Account, error) {
	message := tx.Id()
	keys := make([]*account.Account, 0, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if nil == s.Signer {
			return nil, fault.ErrInvalidSignature
		}
		if err := s.Signer.CheckSignature(message[:], s.Signature); nil != err {
			return nil, fault.ErrInvalidSignature
		}
		keys = append(keys, s.Signer)
	}
	return keys, nil
}

// TransactionMerkleRoot - the merkle root over every transaction's
// SignedId, in block order
func TransactionMerkleRoot(txs []*Transaction) merkle.Digest {
	leaves := make([]merkle.Digest, 0, len(txs))
	for _, tx := range txs {
		leaves = append(leaves, tx.SignedId())
	}
	tree := merkle.FullMerkleTree(leaves)
	return tree[len(tree)-1]
}
