// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/merkle"
	"github.com/bitmark-inc/chaincore/util"
)

// newTestProducer - a freshly generated ED25519 keypair wrapped as a
// producer account, plus a closure that signs with the matching
// private key
func newTestProducer(t *testing.T) (*account.Account, func([]byte) (account.Signature, error)) {
	pub, priv, err := ed25519.GenerateKey(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)

	a := &account.Account{AccountInterface: &account.ED25519Account{PublicKey: pub}}
	signFn := func(message []byte) (account.Signature, error) {
		return account.Signature(ed25519.Sign(priv, message)), nil
	}
	return a, signFn
}

func TestEmptyBlockMerkleRootsAreZero(t *testing.T) {
	producer, _ := newTestProducer(t)
	header := *chainblock.NewHeader(
		blockdigest.Digest{}, 2, time.Now().UTC(), producer, 1, nil,
		chainblock.ActionMerkleRoot(nil), chainblock.TransactionMerkleRoot(nil),
	)
	assert.Equal(t, merkle.Digest{}, header.ActionMerkleRoot)
	assert.Equal(t, merkle.Digest{}, header.TransactionMerkleRoot)
}

func TestHeaderSignAndVerify(t *testing.T) {
	producer, signFn := newTestProducer(t)

	header := chainblock.NewHeader(blockdigest.Digest{}, 2, time.Now().UTC(), producer, 1, nil,
		chainblock.ActionMerkleRoot(nil), chainblock.TransactionMerkleRoot(nil))

	require.NoError(t, header.Sign(signFn))
	assert.NoError(t, header.VerifySignature())

	header.ProducerSignature[0] ^= 0xff
	assert.Error(t, header.VerifySignature())
}

func TestHeaderIdIsDeterministicAndSignatureIndependent(t *testing.T) {
	producer, signFn := newTestProducer(t)
	ts := time.Now().UTC()

	h1 := chainblock.NewHeader(blockdigest.Digest{}, 2, ts, producer, 1, nil,
		chainblock.ActionMerkleRoot(nil), chainblock.TransactionMerkleRoot(nil))
	h2 := chainblock.NewHeader(blockdigest.Digest{}, 2, ts, producer, 1, nil,
		chainblock.ActionMerkleRoot(nil), chainblock.TransactionMerkleRoot(nil))

	require.NoError(t, h1.Sign(signFn))
	id1 := h1.Id()
	id2 := h2.Id()
	if id1 != id2 {
		t.Errorf("block ids diverged despite identical unsigned fields:\n%s\n%s",
			util.FormatBytes("id1", id1[:]), util.FormatBytes("id2", id2[:]))
	}
}

func TestTransactionRecoveredKeys(t *testing.T) {
	signer, signFn := newTestProducer(t)

	tx := &chainblock.Transaction{
		Expiration:  time.Now().Add(time.Minute).UTC(),
		RefBlockNum: 7,
		Actions: []chainblock.Action{
			{Domain: "account", Key: signer.String(), Name: "transfer", Payload: []byte("payload")},
		},
	}
	msg := tx.Id()
	sig, err := signFn(msg[:])
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, chainblock.TxSignature{Signer: signer, Signature: sig})

	keys, err := tx.RecoveredKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, signer.String(), keys[0].String())
}

func TestTransactionRecoveredKeysRejectsBadSignature(t *testing.T) {
	signer, _ := newTestProducer(t)
	tx := &chainblock.Transaction{
		Expiration: time.Now().Add(time.Minute).UTC(),
		Signatures: []chainblock.TxSignature{
			{Signer: signer, Signature: make([]byte, 64)},
		},
	}
	_, err := tx.RecoveredKeys()
	assert.Error(t, err)
}

func TestNewBlockComputesRoots(t *testing.T) {
	signer, signFn := newTestProducer(t)
	tx := &chainblock.Transaction{
		Expiration: time.Now().Add(time.Minute).UTC(),
		Actions: []chainblock.Action{
			{Domain: "account", Key: signer.String(), Name: "transfer", Payload: []byte("x")},
		},
	}
	msg := tx.Id()
	sig, _ := signFn(msg[:])
	tx.Signatures = []chainblock.TxSignature{{Signer: signer, Signature: sig}}

	header := *chainblock.NewHeader(blockdigest.Digest{}, 2, time.Now().UTC(), signer, 1, nil, merkle.Digest{}, merkle.Digest{})
	block := chainblock.NewBlock(header, []*chainblock.Transaction{tx})

	require.Len(t, block.Receipts, 1)
	assert.NotEqual(t, merkle.Digest{}, block.Header.ActionMerkleRoot)
	assert.NotEqual(t, merkle.Digest{}, block.Header.TransactionMerkleRoot)
	assert.Equal(t, uint64(2), block.Number())
}
