// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog_test

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaincore/blockdigest"
	"github.com/bitmark-inc/chaincore/blocklog"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
)

func openTestStore(t *testing.T) *blocklog.Store {
	t.Helper()
	dir, err := ioutil.TempDir("", "blocklog-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := blocklog.Open(dir, false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func blockStateAt(num uint64, previous blockdigest.Digest, id blockdigest.Digest) *chainblock.BlockState {
	header := chainblock.Header{Number: num, Previous: previous, Timestamp: time.Now()}
	return &chainblock.BlockState{Block: &chainblock.Block{Header: header}, Id: id}
}

func TestAppendAndReadBack(t *testing.T) {
	store := openTestStore(t)

	genesis := blockStateAt(0, blockdigest.Digest{}, blockdigest.Digest{1})
	require.NoError(t, store.Append(genesis))

	next := blockStateAt(1, genesis.Id, blockdigest.Digest{2})
	require.NoError(t, store.Append(next))

	block, id, err := store.ReadByNum(1)
	require.NoError(t, err)
	assert.Equal(t, next.Id, id)
	assert.Equal(t, uint64(1), block.Number())

	height, ok := store.Height()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), height)
}

func TestAppendRejectsOutOfSequenceNumber(t *testing.T) {
	store := openTestStore(t)

	genesis := blockStateAt(0, blockdigest.Digest{}, blockdigest.Digest{1})
	require.NoError(t, store.Append(genesis))

	skipped := blockStateAt(2, genesis.Id, blockdigest.Digest{2})
	err := store.Append(skipped)
	assert.Equal(t, fault.ErrBlockOutOfSequence, err)
}

func TestAppendRejectsNonLinkingPrevious(t *testing.T) {
	store := openTestStore(t)

	genesis := blockStateAt(0, blockdigest.Digest{}, blockdigest.Digest{1})
	require.NoError(t, store.Append(genesis))

	wrongParent := blockStateAt(1, blockdigest.Digest{99}, blockdigest.Digest{2})
	err := store.Append(wrongParent)
	assert.Equal(t, fault.ErrLinkageViolation, err)
}

func TestReopenPrimesHeadFromExistingLog(t *testing.T) {
	dir, err := ioutil.TempDir("", "blocklog-reopen")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	store, err := blocklog.Open(dir, false)
	require.NoError(t, err)
	genesis := blockStateAt(0, blockdigest.Digest{}, blockdigest.Digest{1})
	require.NoError(t, store.Append(genesis))
	next := blockStateAt(1, genesis.Id, blockdigest.Digest{2})
	require.NoError(t, store.Append(next))
	require.NoError(t, store.Close())

	reopened, err := blocklog.Open(dir, false)
	require.NoError(t, err)
	defer reopened.Close()

	height, ok := reopened.Height()
	require.True(t, ok)
	assert.Equal(t, uint64(1), height)

	third := blockStateAt(2, next.Id, blockdigest.Digest{3})
	assert.NoError(t, reopened.Append(third))
}
