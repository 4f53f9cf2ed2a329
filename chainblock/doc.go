// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainblock - the DPoS block, transaction and schedule data
// model shared by the fork database, the block log and the
// controller.
//
// Replaces the teacher's proof-of-work Header (difficulty bits and a
// nonce) with a producer-signed Header: the block's producer, the
// schedule version it was produced under and, when a schedule change
// has been proposed, the new producer list. Wire marshaling is an
// external concern (left to the caller's transport layer); this
// package only packs the fields that feed into id/merkle-root
// derivation.
package chainblock
