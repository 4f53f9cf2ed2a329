// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

// KeyWeight - one leaf of an authority tree: a candidate public key
// (base58, matching account.Account.String()) and the weight it
// contributes once presented
type KeyWeight struct {
	Key    string
	Weight uint32
}

// GroupWeight - one branch of an authority tree: a reference to a
// named Group, contributing Group's own satisfied weight scaled by
// Weight once the group itself is satisfied
type GroupWeight struct {
	Group  string
	Weight uint32
}

// AuthorityTree - a threshold authority: satisfied once the summed
// weight of matched KeyWeights and satisfied GroupWeights reaches
// Threshold. Mirrors the classic weighted-multisig permission shape.
type AuthorityTree struct {
	Threshold uint32
	Keys      []KeyWeight
	Groups    []GroupWeight
}

// Domain - the authority roots for one domain name: separate trees
// for issuing new tokens, transferring existing ones, and managing
// the domain's own metadata/authorities
type Domain struct {
	Name     string
	Issue    AuthorityTree
	Transfer AuthorityTree
	Manage   AuthorityTree
	Metadata map[string]string
}

// Group - a named, reusable authority tree referenced by GroupWeight
type Group struct {
	Name      string
	Authority AuthorityTree
}

// Token - one issued token within a domain, with its current owner
type Token struct {
	Domain string
	Id     string
	Owner  string
}

// AccountHolder - the owning key for the special "account" domain,
// distinct from the chain-identity account package: this is a ledger
// row, not a keypair
type AccountHolder struct {
	Name  string
	Owner string
}
