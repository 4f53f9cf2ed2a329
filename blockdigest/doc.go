// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - block and transaction id hashing
//
// a single SHA3-256 pass over the packed record
package blockdigest
