// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txcontext_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/txcontext"
)

type fakeLookup struct {
	handlers map[string]txcontext.HandlerFunc
}

func (f *fakeLookup) Find(name string) (txcontext.HandlerFunc, bool) {
	fn, ok := f.handlers[name]
	return fn, ok
}

func TestExecRunsActionsInOrder(t *testing.T) {
	var order []string
	lookup := &fakeLookup{handlers: map[string]txcontext.HandlerFunc{
		"a": func(ctx *txcontext.Context, action chainblock.Action) error { order = append(order, "a"); return nil },
		"b": func(ctx *txcontext.Context, action chainblock.Action) error { order = append(order, "b"); return nil },
	}}
	trx := &chainblock.Transaction{Actions: []chainblock.Action{{Name: "a"}, {Name: "b"}}}
	ctx := txcontext.NewImplicit(trx, lookup, time.Time{})

	require.NoError(t, ctx.Exec())
	assert.Equal(t, []string{"a", "b"}, order)

	trace := ctx.Finalize()
	assert.Len(t, trace.Actions, 2)
}

func TestExecMissingHandlerIsFatal(t *testing.T) {
	lookup := &fakeLookup{handlers: map[string]txcontext.HandlerFunc{}}
	trx := &chainblock.Transaction{Actions: []chainblock.Action{{Name: "ghost"}}}
	ctx := txcontext.NewImplicit(trx, lookup, time.Time{})

	err := ctx.Exec()
	assert.Equal(t, fault.ErrNoApplyHandler, err)
}

func TestExecDeadlineExceeded(t *testing.T) {
	lookup := &fakeLookup{handlers: map[string]txcontext.HandlerFunc{
		"a": func(ctx *txcontext.Context, action chainblock.Action) error { return nil },
	}}
	trx := &chainblock.Transaction{Actions: []chainblock.Action{{Name: "a"}}}
	ctx := txcontext.NewInput(trx, 1, lookup, time.Now().Add(-time.Microsecond))

	err := ctx.Exec()
	assert.Equal(t, fault.ErrDeadlineExceeded, err)
}

func TestExecStopsOnHandlerError(t *testing.T) {
	var order []string
	lookup := &fakeLookup{handlers: map[string]txcontext.HandlerFunc{
		"a": func(ctx *txcontext.Context, action chainblock.Action) error { order = append(order, "a"); return fault.ErrTxMissingSigs },
		"b": func(ctx *txcontext.Context, action chainblock.Action) error { order = append(order, "b"); return nil },
	}}
	trx := &chainblock.Transaction{Actions: []chainblock.Action{{Name: "a"}, {Name: "b"}}}
	ctx := txcontext.NewImplicit(trx, lookup, time.Time{})

	err := ctx.Exec()
	assert.Equal(t, fault.ErrTxMissingSigs, err)
	assert.Equal(t, []string{"a"}, order)
}
