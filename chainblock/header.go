// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"encoding/binary"
	"time"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/constants"
	"github.com/bitmark-inc/chaincore/merkle"
)

// Header - everything about a block except its transaction receipts.
//
// Unlike the teacher's proof-of-work header (a 32-bit difficulty
// field and a nonce searched for until the packed header's digest
// satisfies the target), a DPoS header is signed once by the producer
// whose turn it is: there is no search, so there is no nonce or
// difficulty field at all.
type Header struct {
	Version               uint16
	Number                uint64
	Previous              blockdigest.Digest
	Timestamp             time.Time
	Producer              *account.Account
	ScheduleVersion       uint32
	NewProducers          *ProducerSchedule
	ActionMerkleRoot      merkle.Digest
	TransactionMerkleRoot merkle.Digest
	ProducerSignature     account.Signature
}

// digestMessage - the byte encoding used both for Producer's signing
// message and for the block Id; ProducerSignature is excluded so the
// producer signs exactly what every other node can reconstruct
func (h *Header) digestMessage() []byte {
	buf := make([]byte, 0, 128)
	var tmp2 [2]byte
	binary.LittleEndian.PutUint16(tmp2[:], h.Version)
	buf = append(buf, tmp2[:]...)
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], h.Number)
	buf = append(buf, tmp8[:]...)
	buf = append(buf, h.Previous[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], uint64(h.Timestamp.UTC().UnixNano()))
	buf = append(buf, tmp8[:]...)
	buf = appendLP(buf, h.Producer.Bytes())
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], h.ScheduleVersion)
	buf = append(buf, tmp4[:]...)
	buf = appendLP(buf, h.NewProducers.pack())
	buf = append(buf, h.ActionMerkleRoot[:]...)
	buf = append(buf, h.TransactionMerkleRoot[:]...)
	return buf
}

// Id - the block id: the digest of every header field except the
// producer's signature over that same digest
func (h *Header) Id() blockdigest.Digest {
	return blockdigest.NewDigest(h.digestMessage())
}

// Sign - compute and attach the producer's signature; producer must
// be able to sign, i.e. be backed by a private key
func (h *Header) Sign(signFn func(message []byte) (account.Signature, error)) error {
	sig, err := signFn(h.digestMessage())
	if nil != err {
		return err
	}
	h.ProducerSignature = sig
	return nil
}

// VerifySignature - check ProducerSignature against Producer's public key
func (h *Header) VerifySignature() error {
	return h.Producer.CheckSignature(h.digestMessage(), h.ProducerSignature)
}

// NewHeader - build a header for the block following previous,
// produced by producer at timestamp, with merkle roots already
// computed over the block's transactions
func NewHeader(previous blockdigest.Digest, number uint64, timestamp time.Time, producer *account.Account, scheduleVersion uint32, newProducers *ProducerSchedule, actionRoot, txRoot merkle.Digest) *Header {
	return &Header{
		Version:               constants.HeaderVersion,
		Number:                number,
		Previous:              previous,
		Timestamp:             timestamp,
		Producer:              producer,
		ScheduleVersion:       scheduleVersion,
		NewProducers:          newProducers,
		ActionMerkleRoot:      actionRoot,
		TransactionMerkleRoot: txRoot,
	}
}
