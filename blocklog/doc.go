// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blocklog - the durable, append-only sequence of finalized
// blocks (spec §2, §6). Every entry links to the previous one by id;
// out-of-sequence or non-linking appends are refused rather than
// silently accepted, since a corrupt log means a corrupt chain.
//
// Wire serialization is out of this repo's scope, so entries are
// recorded with encoding/json rather than a packed binary format,
// following the same precedent the teacher uses for its own
// announce store records.
package blocklog
