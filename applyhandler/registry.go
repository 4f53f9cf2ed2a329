// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package applyhandler

import (
	"github.com/bitmark-inc/chaincore/txcontext"
)

// Registry - an immutable name -> handler map, satisfying
// txcontext.HandlerLookup
type Registry struct {
	handlers map[string]txcontext.HandlerFunc
}

// Builder - accumulates handlers before sealing them into a Registry;
// kept separate from Registry itself so "immutable once built" is a
// property of the type, not just a convention
type Builder struct {
	handlers map[string]txcontext.HandlerFunc
}

// NewBuilder - start registering handlers
func NewBuilder() *Builder {
	return &Builder{handlers: make(map[string]txcontext.HandlerFunc)}
}

// Register - bind name to fn; panics on a duplicate name since a
// colliding registration is a construction-time programming error,
// not a runtime condition
func (b *Builder) Register(name string, fn txcontext.HandlerFunc) *Builder {
	if _, exists := b.handlers[name]; exists {
		panic("applyhandler: duplicate registration for action " + name)
	}
	b.handlers[name] = fn
	return b
}

// Build - seal the registered handlers into an immutable Registry
func (b *Builder) Build() *Registry {
	sealed := make(map[string]txcontext.HandlerFunc, len(b.handlers))
	for k, v := range b.handlers {
		sealed[k] = v
	}
	return &Registry{handlers: sealed}
}

// Find - implements txcontext.HandlerLookup
func (r *Registry) Find(name string) (txcontext.HandlerFunc, bool) {
	fn, ok := r.handlers[name]
	return fn, ok
}
