// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/blocklog"
	"github.com/bitmark-inc/chaincore/blockring"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/controller"
	"github.com/bitmark-inc/chaincore/forkdb"
	"github.com/bitmark-inc/chaincore/signal"
	"github.com/bitmark-inc/chaincore/statestore"
	"github.com/bitmark-inc/chaincore/tokendb"
	"github.com/bitmark-inc/chaincore/txcontext"
	"github.com/bitmark-inc/chaincore/unapplied"
)

// blockringOnce - blockring is a package-wide singleton (one node, one
// ring) that must be initialised before any block is finalized; every
// harness in this test binary shares one ring the way a single running
// node would.
var blockringOnce sync.Once

func ensureBlockringInitialised() {
	blockringOnce.Do(func() {
		blockring.Initialise(blockdigest.NewDigest([]byte("genesis")), nil)
	})
}

type stateSchema struct {
	controller.StateSchema
	Ledger *statestore.PoolHandle `prefix:"L"`
}

type tokenSchema struct {
	Domains  *tokendb.PoolHandle `prefix:"D"`
	Groups   *tokendb.PoolHandle `prefix:"G"`
	Tokens   *tokendb.PoolHandle `prefix:"T"`
	Accounts *tokendb.PoolHandle `prefix:"A"`
}

// fakeLookup - a txcontext.HandlerLookup over a plain name->func map
type fakeLookup struct {
	handlers map[string]txcontext.HandlerFunc
}

func (f *fakeLookup) Find(name string) (txcontext.HandlerFunc, bool) {
	fn, ok := f.handlers[name]
	return fn, ok
}

// newTestProducer - a freshly generated ED25519 keypair wrapped as an
// account, plus a closure that signs with the matching private key.
// Deterministic per seed byte so a test can build several distinct
// producers.
func newTestProducer(t *testing.T, seed byte) (*account.Account, func([]byte) (account.Signature, error)) {
	t.Helper()
	src := make([]byte, 64)
	src[0] = seed
	pub, priv, err := ed25519.GenerateKey(bytes.NewReader(src))
	require.NoError(t, err)

	a := &account.Account{AccountInterface: &account.ED25519Account{PublicKey: pub}}
	signFn := func(message []byte) (account.Signature, error) {
		return account.Signature(ed25519.Sign(priv, message)), nil
	}
	return a, signFn
}

// testHarness - a fully wired Controller over temp-directory stores,
// plus everything a test needs to drive and inspect it
type testHarness struct {
	t *testing.T

	c        *controller.Controller
	state    *statestore.Store
	pools    *stateSchema
	token    *tokendb.Store
	forks    *forkdb.ForkDB
	pool     *unapplied.Pool
	bus      *signal.Bus
	blockLog *blocklog.Store
	lookup   *fakeLookup

	teardown func()
}

// newHarness - build a controller whose genesis active schedule is
// exactly the given producers; the genesis header itself names no
// producer.
func newHarness(t *testing.T, producers ...*account.Account) *testHarness {
	t.Helper()
	ensureBlockringInitialised()

	stateDir, err := ioutil.TempDir("", "controller-state")
	require.NoError(t, err)
	tokenDir, err := ioutil.TempDir("", "controller-token")
	require.NoError(t, err)

	pools := &stateSchema{}
	state, err := statestore.Open(stateDir, statestore.ReadWrite, pools)
	require.NoError(t, err)

	tpools := &tokenSchema{}
	token, err := tokendb.Open(tokenDir, false, tpools)
	require.NoError(t, err)

	logDir, err := ioutil.TempDir("", "controller-blocklog")
	require.NoError(t, err)
	blockLog, err := blocklog.Open(logDir, false)
	require.NoError(t, err)

	forks := forkdb.New(nil)

	entries := make([]chainblock.ProducerScheduleEntry, 0, len(producers))
	for _, p := range producers {
		entries = append(entries, chainblock.ProducerScheduleEntry{Producer: p, Weight: 1})
	}
	schedule := chainblock.ProducerSchedule{Version: 1, Producers: entries}

	genesis := &chainblock.BlockState{
		Block: &chainblock.Block{
			Header: chainblock.Header{
				Version:   1,
				Number:    0,
				Timestamp: time.Unix(0, 0).UTC(),
			},
		},
		Id:                   blockdigest.NewDigest([]byte("genesis")),
		ActiveSchedule:       schedule,
		ProducerLastProduced: make(map[string]uint64),
	}
	forks.Init(genesis)

	pool := unapplied.New()
	bus := signal.New()
	lookup := &fakeLookup{handlers: map[string]txcontext.HandlerFunc{}}

	cfg := controller.Config{
		State:      state,
		Token:      token,
		Forks:      forks,
		BlockLog:   blockLog,
		Pool:       pool,
		Handlers:   lookup,
		Bus:        bus,
		Properties: controller.NewPropertiesStore(pools.Properties),
		DomainAuthority: func(domain, action string) (tokendb.AuthorityTree, error) {
			return tokendb.AuthorityTree{}, nil
		},
		Group: func(name string) (tokendb.AuthorityTree, error) {
			return tokendb.AuthorityTree{}, nil
		},
		Owner: func(domain, key string) (string, error) {
			return key, nil
		},
		Genesis: chainblock.ChainConfiguration{
			MaxTransactionLifetime: time.Hour,
			MaxActiveProducers:     21,
			BlockInterval:          500 * time.Millisecond,
		},
	}

	c, err := controller.New(cfg)
	require.NoError(t, err)

	h := &testHarness{
		t:        t,
		c:        c,
		state:    state,
		pools:    pools,
		token:    token,
		forks:    forks,
		pool:     pool,
		bus:      bus,
		blockLog: blockLog,
		lookup:   lookup,
		teardown: func() {
			state.Close()
			token.Close()
			blockLog.Close()
			os.RemoveAll(stateDir)
			os.RemoveAll(tokenDir)
			os.RemoveAll(logDir)
		},
	}
	return h
}

// registerHandler - add a handler the controller's txcontext lookup
// will find by name
func (h *testHarness) registerHandler(name string, fn txcontext.HandlerFunc) {
	h.lookup.handlers[name] = fn
}
