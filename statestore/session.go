// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statestore

// Session - a nested undo session with its own isolated overlay,
// mirroring tokendb's savepoint so a run of still-open sessions can be
// flushed to disk from the bottom (oldest first) while newer ones
// above stay fully open and independently undoable. That is what lets
// commit_block leave a block's session open (deferring durability)
// while on_irreversible later commits only the blocks that have
// actually become DPoS/BFT irreversible, even when several blocks are
// stacked up waiting.
type Session struct {
	store *Store

	overlay    map[string][]byte
	tombstoned map[string]bool

	closed bool
}

func newSession(s *Store) *Session {
	return &Session{
		store:      s,
		overlay:    make(map[string][]byte),
		tombstoned: make(map[string]bool),
	}
}

// Undo - discard every write this session staged. Must be the
// innermost (most recently started) open session.
func (sess *Session) Undo() error {
	return sess.store.undo(sess)
}

// Squash - merge this session's staged writes into its parent,
// keeping them staged but collapsing the undo boundary between the
// two. Must be the innermost open session, and there must be a parent.
func (sess *Session) Squash() error {
	return sess.store.squash(sess)
}

// Commit - flush this session and every session below it (oldest
// first, so a later write always wins over an earlier one for the
// same key) to goleveldb in one batch, and advance the store's
// revision to revision. Sessions above this one, if any, are left
// open and untouched.
func (sess *Session) Commit(revision uint64) error {
	return sess.store.commit(sess, revision)
}
