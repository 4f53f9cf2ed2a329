// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authz

import (
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/tokendb"
)

// the three action names whose required authority comes straight from
// the domain's own authority trees rather than from a specific
// token's owner (spec §4.3)
const (
	issueAction        = "issuetoken"
	transferAction     = "transfer"
	updateDomainAction = "updatedomain"

	// accountDomain - the special domain whose owner resolver returns
	// the account holder rather than a token owner
	accountDomain = "account"
)

// DomainAuthorityResolver - returns the issue/transfer/manage
// authority tree for a domain
type DomainAuthorityResolver func(domain, actionName string) (tokendb.AuthorityTree, error)

// GroupResolver - returns a named group's authority tree
type GroupResolver func(name string) (tokendb.AuthorityTree, error)

// OwnerResolver - returns the owning key for (domain, key): the
// account holder for domain "account", the token owner otherwise
type OwnerResolver func(domain, key string) (string, error)

// Checker - an authorization checker over one fixed candidate key set
type Checker struct {
	candidates map[string]bool
	used       map[string]bool

	domainAuthority DomainAuthorityResolver
	group           GroupResolver
	owner           OwnerResolver
}

// New - build a checker over candidates (the keys recovered from a
// transaction's signatures)
func New(candidates []string, domainAuthority DomainAuthorityResolver, group GroupResolver, owner OwnerResolver) *Checker {
	set := make(map[string]bool, len(candidates))
	for _, k := range candidates {
		set[k] = true
	}
	return &Checker{
		candidates:      set,
		used:            make(map[string]bool),
		domainAuthority: domainAuthority,
		group:           group,
		owner:           owner,
	}
}

// Satisfied - whether action's required authority is met by the
// candidate key set
func (c *Checker) Satisfied(action chainblock.Action) (bool, error) {
	tree, err := c.requiredAuthority(action)
	if nil != err {
		return false, err
	}
	satisfied, _ := c.evaluate(tree, make(map[string]bool))
	return satisfied, nil
}

// UsedKeys - the candidate keys actually consumed satisfying every
// action checked so far via Satisfied
func (c *Checker) UsedKeys() []string {
	keys := make([]string, 0, len(c.used))
	for k := range c.used {
		keys = append(keys, k)
	}
	return keys
}

func (c *Checker) requiredAuthority(action chainblock.Action) (tokendb.AuthorityTree, error) {
	switch action.Name {
	case issueAction, transferAction, updateDomainAction:
		return c.domainAuthority(action.Domain, action.Name)
	default:
		ownerKey, err := c.owner(action.Domain, action.Key)
		if nil != err {
			return tokendb.AuthorityTree{}, err
		}
		return tokendb.AuthorityTree{
			Threshold: 1,
			Keys:      []tokendb.KeyWeight{{Key: ownerKey, Weight: 1}},
		}, nil
	}
}

// evaluate - recursively sum matched key/group weight against
// threshold, short-circuiting once the threshold is reached; visiting
// guards against a group cycle turning this into infinite recursion
func (c *Checker) evaluate(tree tokendb.AuthorityTree, visiting map[string]bool) (bool, uint32) {
	var sum uint32
	matched := make([]string, 0, len(tree.Keys))

	for _, kw := range tree.Keys {
		if c.candidates[kw.Key] {
			sum += kw.Weight
			matched = append(matched, kw.Key)
			if sum >= tree.Threshold {
				c.markUsed(matched)
				return true, sum
			}
		}
	}

	for _, gw := range tree.Groups {
		if visiting[gw.Group] {
			continue
		}
		groupTree, err := c.group(gw.Group)
		if nil != err {
			continue
		}
		visiting[gw.Group] = true
		ok, _ := c.evaluate(groupTree, visiting)
		delete(visiting, gw.Group)
		if ok {
			sum += gw.Weight
			if sum >= tree.Threshold {
				c.markUsed(matched)
				return true, sum
			}
		}
	}

	return false, sum
}

func (c *Checker) markUsed(keys []string) {
	for _, k := range keys {
		c.used[k] = true
	}
}

// IsAccountDomain returns whether domain is the special account domain,
// exposed so callers building an OwnerResolver can share one
// implementation across account and token domains without duplicating
// the constant.
func IsAccountDomain(domain string) bool {
	return accountDomain == domain
}
