// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/chaincore/authz"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/tokendb"
)

// domainAuthorityResolver - the domain's Issue/Transfer/Manage tree
// for issuetoken/transfer/updatedomain, backed by tokendb's own
// on-disk domain index rather than a test stub.
func domainAuthorityResolver(domains *tokendb.DomainIndex) authz.DomainAuthorityResolver {
	return func(domain, actionName string) (tokendb.AuthorityTree, error) {
		d, err := domains.Get(domain)
		if nil != err {
			return tokendb.AuthorityTree{}, err
		}
		switch actionName {
		case "issuetoken":
			return d.Issue, nil
		case "transfer":
			return d.Transfer, nil
		case "updatedomain":
			return d.Manage, nil
		default:
			return tokendb.AuthorityTree{}, fault.ErrUnsupportedDomainAction
		}
	}
}

// groupResolver - a named authority group's tree, for GroupWeight
// branches inside a domain's authority trees.
func groupResolver(groups *tokendb.GroupIndex) authz.GroupResolver {
	return func(name string) (tokendb.AuthorityTree, error) {
		g, err := groups.Get(name)
		if nil != err {
			return tokendb.AuthorityTree{}, err
		}
		return g.Authority, nil
	}
}

// ownerResolver - the owning key for (domain, key): the special
// "account" domain routes through AccountIndex (a name, not a token
// id); every other domain routes through TokenIndex.
func ownerResolver(accounts *tokendb.AccountIndex, tokens *tokendb.TokenIndex) authz.OwnerResolver {
	return func(domain, key string) (string, error) {
		if "account" == domain {
			return accounts.Owner(key)
		}
		return tokens.Owner(domain, key)
	}
}
