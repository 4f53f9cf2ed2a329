// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signal - the six observable consensus events
// (accepted_block_header, accepted_block, accepted_transaction,
// applied_transaction, accepted_confirmation, irreversible_block) and
// their delivery to in-process subscribers and, optionally, a zmq4 PUB
// socket for out-of-process listeners (spec §5, §6).
//
// A subscriber panic is recovered and logged, never propagated: per
// spec §5, "subscribers must never influence consensus."
package signal
