// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

// Guard - a scoped rollback: build one right before a risky
// operation, `defer guard.Release()`, and call Cancel once every
// following step has succeeded. Release after Cancel is a no-op
// (spec §9: "Implement as a value that runs its restore action on
// drop unless a cancel method has cleared it. Every exit path — normal
// return or error — must pass through drop.").
//
// Go has no destructors, so "drop" here means "the deferred Release
// call fires"; callers are responsible for the defer.
type Guard struct {
	restore   func()
	cancelled bool
}

// NewGuard - restore runs on Release unless Cancel is called first
func NewGuard(restore func()) *Guard {
	return &Guard{restore: restore}
}

// Cancel - the guarded operation succeeded; Release becomes a no-op
func (g *Guard) Cancel() {
	g.cancelled = true
}

// Release - run the restore action unless cancelled. Safe to call
// more than once: only the first call (that is not preceded by
// Cancel) has any effect.
func (g *Guard) Release() {
	if g.cancelled || nil == g.restore {
		return
	}
	fn := g.restore
	g.restore = nil
	fn()
}
