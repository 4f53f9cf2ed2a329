// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/chaincore/signal"
)

func TestEmitDeliversToAllSubscribers(t *testing.T) {
	bus := signal.New()
	var got []signal.Kind
	bus.Subscribe(func(kind signal.Kind, payload interface{}) { got = append(got, kind) })
	bus.Subscribe(func(kind signal.Kind, payload interface{}) { got = append(got, kind) })

	bus.Emit(signal.AcceptedBlock, 42)

	assert.Equal(t, []signal.Kind{signal.AcceptedBlock, signal.AcceptedBlock}, got)
}

func TestEmitRecoversSubscriberPanic(t *testing.T) {
	bus := signal.New()
	called := false
	bus.Subscribe(func(kind signal.Kind, payload interface{}) { panic("boom") })
	bus.Subscribe(func(kind signal.Kind, payload interface{}) { called = true })

	assert.NotPanics(t, func() { bus.Emit(signal.IrreversibleBlock, nil) })
	assert.True(t, called, "a panicking subscriber must not block delivery to the rest")
}
