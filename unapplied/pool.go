// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package unapplied

import (
	"sync"
	"time"

	"github.com/bitmark-inc/chaincore/background"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/constants"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/logger"
)

// Entry - one pending transaction
type Entry struct {
	Id        string // signed_id, hex-encoded
	Trx       *chainblock.Transaction
	ExpiresAt time.Time
}

// Pool - the unapplied transaction set
type Pool struct {
	mu    sync.RWMutex
	items map[string]Entry

	log        *logger.L
	background *background.T
}

// New - construct an empty pool; call Start to begin the expiry sweep
func New() *Pool {
	return &Pool{
		items: make(map[string]Entry),
		log:   logger.New("unapplied"),
	}
}

// Start - launch the background expiry sweep
func (p *Pool) Start() {
	p.background = background.Start(background.Processes{&sweeper{pool: p}}, nil)
}

// Stop - shut down the expiry sweep
func (p *Pool) Stop() {
	if nil != p.background {
		p.background.Stop()
	}
}

// Add - admit an externally-submitted transaction to the pool
//
// returns fault.ErrDuplicateTransaction, an objective error, if id is
// already present, and leaves the existing entry unchanged; the
// controller itself only uses Put and Remove
func (p *Pool) Add(id string, trx *chainblock.Transaction, expiresAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, found := p.items[id]; found {
		return fault.ErrDuplicateTransaction
	}
	p.items[id] = Entry{Id: id, Trx: trx, ExpiresAt: expiresAt}
	return nil
}

// Put - unconditionally (re-)insert a transaction, last writer wins.
// Used when a block application or reorg returns a transaction to the
// pool: it is not a new submission, so a stale duplicate must not be
// rejected (spec §4.5 abort_block: "keyed by signed_id, last writer
// wins").
func (p *Pool) Put(id string, trx *chainblock.Transaction, expiresAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[id] = Entry{Id: id, Trx: trx, ExpiresAt: expiresAt}
}

// Remove - drop id from the pool, e.g. because a block application
// included it
func (p *Pool) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, id)
}

// Has - check membership without copying the entry
func (p *Pool) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, found := p.items[id]
	return found
}

// Get - fetch a copy of the pending entry for id
func (p *Pool) Get(id string) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, found := p.items[id]
	return e, found
}

// Len - number of pending transactions
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// ClearExpired - remove every entry whose expiry has passed, called on
// the sweep timer and also directly by clear_expired_input_transactions
// before a block starts accumulating new transactions
func (p *Pool) ClearExpired(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, e := range p.items {
		if now.After(e.ExpiresAt) {
			delete(p.items, id)
			removed++
		}
	}
	return removed
}

type sweeper struct {
	pool *Pool
}

func (s *sweeper) Run(args interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(constants.UnappliedSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n := s.pool.ClearExpired(time.Now())
			if n > 0 {
				s.pool.log.Infof("swept %d expired transactions", n)
			}
		case <-shutdown:
			return
		}
	}
}
