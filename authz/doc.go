// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authz - the authorization checker: given a set of candidate
// public keys recovered from a transaction's signatures, decides
// whether an action's required authority is satisfied.
//
// The checker itself knows nothing about domains, groups or token
// ownership; it is handed three resolver callbacks (domain authority,
// group authority, owner) and recurses over the resulting authority
// tree. This mirrors the teacher's fee/ownership checks in spirit
// (candidate keys against a required set) but generalizes the
// single flat key comparison into a weighted, recursive tree so that
// groups (spec §4.3) can nest.
package authz
