// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaincore/configuration"
)

const testConfigLua = `
return {
	data_directory = ".",
	pidfile = "chaincored.pid",

	shared_memory_dir = "shm",
	shared_memory_size = 4096,
	block_log_dir = "blocks",
	tokendb_dir = "tokendb.leveldb",
	statedb_dir = "state.leveldb",
	read_only = false,

	genesis = {
		chain = "testing",
		initial_producer = "",
	},

	logging = {
		directory = "log",
		file = "chaincored.log",
		size = 1048576,
		count = 10,
		levels = { main = "info" },
	},
}
`

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	name := filepath.Join(dir, "chaincored.conf")
	require.NoError(t, ioutil.WriteFile(name, []byte(testConfigLua), 0600))
	return name
}

func TestGetConfigurationResolvesPathsUnderDataDirectory(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	options, err := configuration.GetConfiguration(writeTestConfig(t, dir))
	require.NoError(t, err)

	assert.Equal(t, "testing", options.Genesis.Chain)
	assert.True(t, filepath.IsAbs(options.PidFile))
	assert.True(t, filepath.IsAbs(options.SharedMemoryDir))
	assert.True(t, filepath.IsAbs(options.BlockLogDir))
	assert.True(t, filepath.IsAbs(options.TokenDBDir))
	assert.True(t, filepath.IsAbs(options.StateDBDir))
	assert.True(t, filepath.IsAbs(options.Logging.File))

	for _, d := range []string{options.SharedMemoryDir, options.BlockLogDir, options.TokenDBDir, options.StateDBDir, options.Logging.Directory} {
		fi, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestGetConfigurationRejectsUnknownChain(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "chaincored.conf")
	bad := `return { data_directory = ".", genesis = { chain = "nonesuch" } }`
	require.NoError(t, ioutil.WriteFile(name, []byte(bad), 0600))

	_, err = configuration.GetConfiguration(name)
	assert.Error(t, err)
}

func TestGetConfigurationDefaultsStateDBDirToChainName(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "chaincored.conf")
	body := `return { data_directory = ".", genesis = { chain = "local" } }`
	require.NoError(t, ioutil.WriteFile(name, []byte(body), 0600))

	options, err := configuration.GetConfiguration(name)
	require.NoError(t, err)
	assert.Contains(t, options.StateDBDir, "local.leveldb")
}
