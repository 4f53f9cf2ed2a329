// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statestore

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/logger"
)

// Store - the indexed object store. One Store instance backs exactly
// one goleveldb database; pools are struct-tagged views over it, set
// up the same way the teacher's storage.Pool was.
type Store struct {
	mu sync.Mutex

	log *logger.L
	db  *leveldb.DB

	cache readCache

	sessions []*Session // bottom = oldest = lowest revision

	// revision is the logical revision: the block number of the most
	// recent commit_block, advanced by Advance the moment a block
	// commits (spec §8: "for every successful commit_block, the
	// post-state store revision equals the new head's block number").
	// flushed is the revision actually durable on disk, advanced only
	// when commit() runs (deferred until on_irreversible); it always
	// trails or equals revision.
	revision uint64
	flushed  uint64

	initialised bool
}

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Open - create a Store and populate dest (a pointer to a struct of
// *PoolHandle fields tagged `prefix:"X"`) with one handle per field,
// mirroring the reflect-driven setup the teacher used for its own
// Pool struct
func Open(path string, readOnly bool, dest interface{}) (*Store, error) {
	opt := &ldb_opt.Options{
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}
	db, err := leveldb.OpenFile(path, opt)
	if nil != err {
		return nil, err
	}

	s := &Store{
		log:         logger.New("statestore"),
		db:          db,
		cache:       newReadCache(),
		initialised: true,
	}

	if err := s.bindPools(dest); nil != err {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close - flush the underlying database handle; callers must not have
// any open sessions
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) > 0 {
		return fault.ErrSessionNotInnermost
	}
	if !s.initialised {
		return fault.ErrNotInitialised
	}
	s.initialised = false
	return s.db.Close()
}

func (s *Store) bindPools(dest interface{}) error {
	return s.bindPoolsValue(reflect.TypeOf(dest).Elem(), reflect.ValueOf(dest).Elem())
}

// bindPoolsValue - recurse into anonymous embedded struct fields (such
// as an embedded StateSchema) so a caller can compose the controller's
// own schema with domain-specific pools in one struct.
func (s *Store) bindPoolsValue(destType reflect.Type, destValue reflect.Value) error {
	for i := 0; i < destType.NumField(); i++ {
		field := destType.Field(i)
		if field.Anonymous && reflect.Struct == field.Type.Kind() {
			if err := s.bindPoolsValue(field.Type, destValue.Field(i)); nil != err {
				return err
			}
			continue
		}
		prefixTag := field.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("statestore: field %s has invalid prefix tag %q", field.Name, prefixTag)
		}
		handle := newPoolHandle(s, prefixTag[0])
		destValue.Field(i).Set(reflect.ValueOf(handle))
	}
	return nil
}

// Revision - the block number of the last block whose session was
// committed (logically; the underlying leveldb flush may still be
// pending a later on_irreversible callback, see Advance).
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Advance - record that a block has logically committed at revision,
// without touching the underlying leveldb database. commit_block calls
// this immediately (the session itself stays open in the caller's
// awaiting list), so Revision() reflects the new head's block number
// right away even though the durable flush is deferred until the
// block's session is later committed via Session.Commit once it
// becomes irreversible.
func (s *Store) Advance(revision uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision <= s.revision {
		return fault.ErrRevisionMismatch
	}
	s.revision = revision
	return nil
}

// Retreat - roll the logical revision back to revision, the mirror of
// Advance used by pop_block once it has Undo'd a block's still-open
// session: pop_block only ever pops a block whose session was never
// flushed to disk, so revision can always retreat at least to the
// last flushed one.
func (s *Store) Retreat(revision uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision < s.flushed {
		return fault.ErrRevisionMismatch
	}
	s.revision = revision
	return nil
}

// StartUndoSession - open a new, innermost undo session
func (s *Store) StartUndoSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newSession(s)
	s.sessions = append(s.sessions, sess)
	return sess
}

func (s *Store) innermost(sess *Session) bool {
	return len(s.sessions) > 0 && s.sessions[len(s.sessions)-1] == sess
}

func (s *Store) get(key []byte) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key []byte) ([]byte, bool) {
	k := string(key)
	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if sess.tombstoned[k] {
			return nil, false
		}
		if v, ok := sess.overlay[k]; ok {
			return v, true
		}
	}
	if v, ok := s.cache.get(k); ok {
		return v, true
	}
	v, ok := rawDBGet(s.db, key)
	if ok {
		s.cache.set(k, v)
	}
	return v, ok
}

func (s *Store) put(key []byte, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	if 0 == len(s.sessions) {
		s.db.Put(key, value, nil)
		s.cache.set(k, value)
		return
	}
	top := s.sessions[len(s.sessions)-1]
	top.overlay[k] = value
	delete(top.tombstoned, k)
}

func (s *Store) delete(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	if 0 == len(s.sessions) {
		s.db.Delete(key, nil)
		s.cache.delete(k)
		return
	}
	top := s.sessions[len(s.sessions)-1]
	delete(top.overlay, k)
	top.tombstoned[k] = true
}

func (s *Store) undo(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.innermost(sess) {
		return fault.ErrSessionNotInnermost
	}

	s.sessions = s.sessions[:len(s.sessions)-1]
	sess.closed = true
	return nil
}

func (s *Store) squash(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.innermost(sess) {
		return fault.ErrSessionNotInnermost
	}
	if 1 == len(s.sessions) {
		return fault.ErrNoOpenSession
	}

	parent := s.sessions[len(s.sessions)-2]
	for k, v := range sess.overlay {
		parent.overlay[k] = v
		delete(parent.tombstoned, k)
	}
	for k := range sess.tombstoned {
		parent.tombstoned[k] = true
		delete(parent.overlay, k)
	}

	s.sessions = s.sessions[:len(s.sessions)-1]
	sess.closed = true
	return nil
}

// commit - flush sess and every still-open session below it (oldest
// first) to goleveldb in one batch, advance the durable revision, and
// drop them from the stack; any sessions above sess are left open
// exactly as they were. sess need not be innermost: on_irreversible
// routinely commits the oldest pending block's session while newer,
// still-reversible blocks remain stacked above it. The logical
// revision (Revision/Advance) normally already sits at or ahead of
// revision by the time this runs, since commit_block calls Advance
// well before a block becomes irreversible enough to flush.
func (s *Store) commit(sess *Session, revision uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, other := range s.sessions {
		if other == sess {
			idx = i
			break
		}
	}
	if -1 == idx {
		return fault.ErrNoOpenSession
	}
	if revision <= s.flushed {
		return fault.ErrRevisionMismatch
	}

	merged := make(map[string][]byte)
	tombstoned := make(map[string]bool)
	for _, other := range s.sessions[:idx+1] {
		for k, v := range other.overlay {
			merged[k] = v
			delete(tombstoned, k)
		}
		for k := range other.tombstoned {
			tombstoned[k] = true
			delete(merged, k)
		}
	}

	batch := new(leveldb.Batch)
	for k, v := range merged {
		batch.Put([]byte(k), v)
	}
	for k := range tombstoned {
		batch.Delete([]byte(k))
		s.cache.delete(k)
	}
	for k, v := range merged {
		s.cache.set(k, v)
	}

	if err := s.db.Write(batch, nil); nil != err {
		return err
	}

	for _, other := range s.sessions[:idx+1] {
		other.closed = true
	}
	s.sessions = s.sessions[idx+1:]
	s.flushed = revision
	if revision > s.revision {
		s.revision = revision
	}
	return nil
}
