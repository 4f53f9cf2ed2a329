// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaincore/tokendb"
)

type testPools struct {
	Domains  *tokendb.PoolHandle `prefix:"D"`
	Groups   *tokendb.PoolHandle `prefix:"G"`
	Tokens   *tokendb.PoolHandle `prefix:"T"`
	Accounts *tokendb.PoolHandle `prefix:"A"`
}

func openTestStore(t *testing.T) (*tokendb.Store, *testPools) {
	dir, err := ioutil.TempDir("", "tokendb-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	pools := &testPools{}
	store, err := tokendb.Open(dir, false, pools)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, pools
}

func TestDomainPutGetAcrossSavepoint(t *testing.T) {
	store, pools := openTestStore(t)
	domains := tokendb.NewDomainIndex(pools.Domains)

	store.StartSavepoint(1)
	err := domains.Put(tokendb.Domain{
		Name:   "widgets",
		Issue:  tokendb.AuthorityTree{Threshold: 1, Keys: []tokendb.KeyWeight{{Key: "abc", Weight: 1}}},
	})
	require.NoError(t, err)

	d, err := domains.Get("widgets")
	require.NoError(t, err)
	require.Equal(t, uint32(1), d.Issue.Threshold)

	require.NoError(t, store.PopSavepoints(1))

	d2, err := domains.Get("widgets")
	require.NoError(t, err)
	require.Equal(t, "widgets", d2.Name)
}

func TestRollbackDiscardsUncommittedWrites(t *testing.T) {
	store, pools := openTestStore(t)
	groups := tokendb.NewGroupIndex(pools.Groups)

	store.StartSavepoint(1)
	require.NoError(t, groups.Put(tokendb.Group{Name: "council"}))

	require.NoError(t, store.RollbackToLatestSavepoint())

	_, err := groups.Get("council")
	require.Error(t, err)
}

func TestPopSavepointsOnlyCommitsUpToTag(t *testing.T) {
	store, pools := openTestStore(t)
	tokens := tokendb.NewTokenIndex(pools.Tokens)

	store.StartSavepoint(1)
	require.NoError(t, tokens.Put(tokendb.Token{Domain: "widgets", Id: "1", Owner: "alice"}))
	store.StartSavepoint(2)
	require.NoError(t, tokens.Put(tokendb.Token{Domain: "widgets", Id: "2", Owner: "bob"}))

	require.NoError(t, store.PopSavepoints(1))

	owner, err := tokens.Owner("widgets", "1")
	require.NoError(t, err)
	require.Equal(t, "alice", owner)

	// tag 2 is still open; rolling it back must not affect tag 1's
	// already-committed token
	require.NoError(t, store.RollbackToLatestSavepoint())
	_, err = tokens.Get("widgets", "2")
	require.Error(t, err)
}

func TestAccountOwnerResolution(t *testing.T) {
	store, pools := openTestStore(t)
	accounts := tokendb.NewAccountIndex(pools.Accounts)

	store.StartSavepoint(1)
	require.NoError(t, accounts.Put(tokendb.AccountHolder{Name: "alice", Owner: "alice-key"}))
	require.NoError(t, store.PopSavepoints(1))

	owner, err := accounts.Owner("alice")
	require.NoError(t, err)
	require.Equal(t, "alice-key", owner)
}
