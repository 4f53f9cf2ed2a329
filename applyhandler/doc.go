// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package applyhandler - the registry mapping an action name to its
// apply handler function. Built once at controller construction and
// never mutated afterward (spec §3 Lifecycles: "Apply handlers are
// registered once at construction, immutable").
package applyhandler
