// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua node configuration file
//
// most of base Lua is available such as reading files to set key data
// and getenv to extract environment supplied items. A few values
// (data_directory, pidfile, read_only, genesis.chain) may also be
// overridden by CHAINCORED_* environment variables through the viper
// overlay in GetConfiguration; command line flags are not overlaid.
package configuration
