// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txcontext - executes one transaction: routes each action in
// declared order to its registered apply handler, accumulates action
// receipts, and enforces the transaction's deadline between actions
// (spec §4.4).
package txcontext
