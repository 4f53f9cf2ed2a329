// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/chaincore/controller"
)

func TestGuardReleasesWithoutCancel(t *testing.T) {
	fired := false
	g := controller.NewGuard(func() { fired = true })
	g.Release()
	assert.True(t, fired)
}

func TestGuardCancelSuppressesRestore(t *testing.T) {
	fired := false
	g := controller.NewGuard(func() { fired = true })
	g.Cancel()
	g.Release()
	assert.False(t, fired)
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	count := 0
	g := controller.NewGuard(func() { count++ })
	g.Release()
	g.Release()
	assert.Equal(t, 1, count)
}
