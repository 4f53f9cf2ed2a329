// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/bitmark-inc/chaincore/chain"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/util"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to DataDirectory
// unless already absolute)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file
	defaultPidFile       = "chaincored.pid"

	defaultSharedMemoryDir  = "shm"
	defaultSharedMemorySize = 64 * 1024 * 1024
	defaultBlockLogDir      = "blocks"
	defaultTokenDBDir       = "tokendb.leveldb"

	defaultStateDBDir        = chain.Mainnet + ".leveldb"
	defaultTestingStateDBDir = chain.Testing + ".leveldb"
	defaultLocalStateDBDir   = chain.Local + ".leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "chaincored.log"
	defaultLogCount     = 10          // number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	// envPrefix - environment variables overriding a loaded
	// configuration are named CHAINCORED_<KEY>, dots replaced by
	// underscores (e.g. CHAINCORED_GENESIS_CHAIN)
	envPrefix = "CHAINCORED"
)

// LoglevelMap - per-tag minimum log level, keyed by logger.L tag name
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	"main":            "info",
	"config":          "info",
	logger.DefaultTag: "critical",
}

// LoggerType - log rotation and per-tag verbosity, same shape the
// teacher's own logger.Initialise expects
type LoggerType struct {
	Directory string            `gluamapper:"directory"`
	File      string            `gluamapper:"file"`
	Size      int               `gluamapper:"size"`
	Count     int               `gluamapper:"count"`
	Levels    map[string]string `gluamapper:"levels"`
}

// GenesisType - the chain a node is joining, and the account the
// genesis block is attributed to. InitialProducer is read on every
// boot, since the genesis block state the fork database is seeded with
// is rebuilt from it each time; it must not be empty.
type GenesisType struct {
	Chain           string `gluamapper:"chain"`
	InitialProducer string `gluamapper:"initial_producer"`
	Message         string `gluamapper:"message"`
}

// Configuration - the top-level shape of a node's Lua configuration
// file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory"`
	PidFile       string `gluamapper:"pidfile"`

	SharedMemoryDir  string `gluamapper:"shared_memory_dir"`
	SharedMemorySize int    `gluamapper:"shared_memory_size"`
	BlockLogDir      string `gluamapper:"block_log_dir"`
	TokenDBDir       string `gluamapper:"tokendb_dir"`
	StateDBDir       string `gluamapper:"statedb_dir"`
	ReadOnly         bool   `gluamapper:"read_only"`

	Genesis GenesisType `gluamapper:"genesis"`
	Logging LoggerType  `gluamapper:"logging"`
}

// newEnvironmentOverlay - a viper instance bound to CHAINCORED_* so a
// running node can be tuned without editing its Lua file, the way a
// container deployment usually wants
func newEnvironmentOverlay() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// overlayEnvironment - apply any CHAINCORED_* variables present over
// the values already read from the configuration file
func overlayEnvironment(v *viper.Viper, options *Configuration) {
	if v.IsSet("data_directory") {
		options.DataDirectory = v.GetString("data_directory")
	}
	if v.IsSet("pidfile") {
		options.PidFile = v.GetString("pidfile")
	}
	if v.IsSet("read_only") {
		options.ReadOnly = v.GetBool("read_only")
	}
	if v.IsSet("genesis.chain") {
		options.Genesis.Chain = v.GetString("genesis.chain")
	}
}

// GetConfiguration - read, decode, overlay and verify a node's
// configuration file
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       defaultPidFile,

		SharedMemoryDir:  defaultSharedMemoryDir,
		SharedMemorySize: defaultSharedMemorySize,
		BlockLogDir:      defaultBlockLogDir,
		TokenDBDir:       defaultTokenDBDir,
		StateDBDir:       defaultStateDBDir,

		Genesis: GenesisType{
			Chain: chain.Mainnet,
		},

		Logging: LoggerType{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	overlayEnvironment(newEnvironmentOverlay(), options)

	// abort if the chain name is not recognised
	options.Genesis.Chain = strings.ToLower(options.Genesis.Chain)
	if !chain.Valid(options.Genesis.Chain) {
		return nil, fault.ErrInvalidChain
	}

	// if the state database directory was not changed from default,
	// pick the one matching the selected chain
	if options.StateDBDir == defaultStateDBDir {
		switch options.Genesis.Chain {
		case chain.Mainnet:
			// already correct default
		case chain.Testing:
			options.StateDBDir = defaultTestingStateDBDir
		case chain.Local:
			options.StateDBDir = defaultLocalStateDBDir
		}
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.ErrRequiredConfigDir
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fault.ErrConfigDirPath
	}

	// force all relevant items to be absolute paths, relative to the
	// data directory when not already absolute
	mustBeAbsolute := []*string{
		&options.PidFile,
		&options.SharedMemoryDir,
		&options.BlockLogDir,
		&options.TokenDBDir,
		&options.StateDBDir,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// the log file name must be a plain name, then gets the log
	// directory prepended
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
		options.Logging.File = util.EnsureAbsolute(options.Logging.Directory, options.Logging.File)
	default:
		return nil, errors.New(fmt.Sprintf("Files: %q is not plain name", options.Logging.File))
	}

	// create directories that do not already exist
	for _, d := range []*string{&options.SharedMemoryDir, &options.BlockLogDir, &options.TokenDBDir, &options.StateDBDir, &options.Logging.Directory} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	return options, nil
}
