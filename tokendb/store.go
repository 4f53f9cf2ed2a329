// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokendb

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/logger"
)

// savepoint - one tagged frame of staged writes, named by the state
// store revision it was opened alongside
type savepoint struct {
	tag        uint64
	overlay    map[string][]byte
	tombstoned map[string]bool
}

func newSavepoint(tag uint64) *savepoint {
	return &savepoint{tag: tag, overlay: make(map[string][]byte), tombstoned: make(map[string]bool)}
}

// Store - the domain/group/token/account database, with a stack of
// named savepoints instead of statestore's anonymous undo sessions
type Store struct {
	mu sync.Mutex

	log *logger.L
	db  *leveldb.DB

	savepoints []*savepoint // bottom = oldest = lowest tag
}

// Open - create a Store and bind dest's `prefix:"X"`-tagged
// *PoolHandle fields, same reflect-driven convention as statestore
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
		log: logger.New("tokendb"),
		db:  db,
	}

	if err := s.bindPools(dest); nil != err {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close - flush the underlying database handle
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.savepoints) > 0 {
		return fault.ErrSessionNotInnermost
	}
	return s.db.Close()
}

func (s *Store) bindPools(dest interface{}) error {
	destType := reflect.TypeOf(dest).Elem()
	destValue := reflect.ValueOf(dest).Elem()

	for i := 0; i < destType.NumField(); i++ {
		field := destType.Field(i)
		prefixTag := field.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("tokendb: field %s has invalid prefix tag %q", field.Name, prefixTag)
		}
		handle := newPoolHandle(s, prefixTag[0])
		destValue.Field(i).Set(reflect.ValueOf(handle))
	}
	return nil
}

// StartSavepoint - open a new, innermost savepoint tagged with the
// paired state-store revision
func (s *Store) StartSavepoint(tag uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savepoints = append(s.savepoints, newSavepoint(tag))
}

// LatestSavepointTag - the tag of the innermost open savepoint, or
// false when none is open
func (s *Store) LatestSavepointTag() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if 0 == len(s.savepoints) {
		return 0, false
	}
	return s.savepoints[len(s.savepoints)-1].tag, true
}

// RollbackToLatestSavepoint - discard the innermost savepoint's
// staged writes without touching disk, paired with a state-store undo
func (s *Store) RollbackToLatestSavepoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if 0 == len(s.savepoints) {
		return fault.ErrNoOpenSession
	}
	s.savepoints = s.savepoints[:len(s.savepoints)-1]
	return nil
}

// PopSavepoints - commit to disk every savepoint tagged <= n, in
// order from oldest to newest so later writes win, paired with a
// state-store commit(n)
func (s *Store) PopSavepoints(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := 0
	for idx < len(s.savepoints) && s.savepoints[idx].tag <= n {
		idx++
	}
	if 0 == idx {
		return nil
	}

	merged := make(map[string][]byte)
	tombstoned := make(map[string]bool)
	for _, sp := range s.savepoints[:idx] {
		for k, v := range sp.overlay {
			merged[k] = v
			delete(tombstoned, k)
		}
		for k := range sp.tombstoned {
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
	}
	if err := s.db.Write(batch, nil); nil != err {
		return err
	}

	// any still-open savepoint above idx that referenced an old value
	// via hadOld bookkeeping isn't needed here: tokendb has no undo
	// log, only forward staged writes, so surviving frames are
	// untouched by the flush.
	s.savepoints = s.savepoints[idx:]
	return nil
}

func (s *Store) get(key []byte) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	for i := len(s.savepoints) - 1; i >= 0; i-- {
		sp := s.savepoints[i]
		if sp.tombstoned[k] {
			return nil, false
		}
		if v, ok := sp.overlay[k]; ok {
			return v, true
		}
	}
	v, err := s.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, false
	}
	if nil != err {
		return nil, false
	}
	return v, true
}

func (s *Store) put(key []byte, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	if 0 == len(s.savepoints) {
		s.db.Put(key, value, nil)
		return
	}
	top := s.savepoints[len(s.savepoints)-1]
	top.overlay[k] = value
	delete(top.tombstoned, k)
}

func (s *Store) delete(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	if 0 == len(s.savepoints) {
		s.db.Delete(key, nil)
		return
	}
	top := s.savepoints[len(s.savepoints)-1]
	delete(top.overlay, k)
	top.tombstoned[k] = true
}

// sortedSavepointTags - exposed for tests asserting stack order
func (s *Store) sortedSavepointTags() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]uint64, 0, len(s.savepoints))
	for _, sp := range s.savepoints {
		tags = append(tags, sp.tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
