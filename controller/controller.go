// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"sync"
	"time"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/authz"
	"github.com/bitmark-inc/chaincore/blocklog"
	"github.com/bitmark-inc/chaincore/blockring"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/constants"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/forkdb"
	"github.com/bitmark-inc/chaincore/signal"
	"github.com/bitmark-inc/chaincore/statestore"
	"github.com/bitmark-inc/chaincore/tokendb"
	"github.com/bitmark-inc/chaincore/txcontext"
	"github.com/bitmark-inc/chaincore/unapplied"
	"github.com/bitmark-inc/logger"
)

// committedSession - one not-yet-irreversible block's paired state-store
// session and token-store savepoint tag, left open by commit_block.
// c.awaiting holds these oldest-first; on_irreversible flushes a
// bottom-up run of them while pop_block always undoes the newest
// (spec §4.2 two-store coupling, §4.5 commit_block/on_irreversible).
type committedSession struct {
	blockNum uint64
	session  *statestore.Session
	tag      uint64
}

// SignFunc - given a header's signing message, return the producer's
// signature over it (spec §9: "the callback contract is 'given a
// header digest, return a signature'").
type SignFunc func(message []byte) (account.Signature, error)

// Config - the dependencies New wires into a Controller. Forks must
// already be initialised (genesis or block-log replay) before New is
// called, since head is seeded from forks.Head().
type Config struct {
	State    *statestore.Store
	Token    *tokendb.Store
	Forks    *forkdb.ForkDB
	BlockLog *blocklog.Store
	Pool     *unapplied.Pool
	Handlers txcontext.HandlerLookup
	Bus      *signal.Bus
	Metrics  *Metrics

	Properties      *PropertiesStore
	DomainAuthority authz.DomainAuthorityResolver
	Group           authz.GroupResolver
	Owner           authz.OwnerResolver

	Genesis chainblock.ChainConfiguration
}

// Controller - sequences the block lifecycle (spec §4.5). Single
// mutex for mutation (spec §5); no operation inside voluntarily
// suspends beyond whatever the state/token stores block on.
type Controller struct {
	mu sync.Mutex

	log *logger.L

	state    *statestore.Store
	token    *tokendb.Store
	forks    *forkdb.ForkDB
	blocklog *blocklog.Store
	pool     *unapplied.Pool
	handlers txcontext.HandlerLookup
	bus      *signal.Bus
	metrics  *Metrics

	properties      *PropertiesStore
	domainAuthority authz.DomainAuthorityResolver
	group           authz.GroupResolver
	owner           authz.OwnerResolver

	genesisConfiguration chainblock.ChainConfiguration

	head    *chainblock.BlockState
	pending *pendingState

	awaiting []committedSession
}

// New - build a controller over cfg, seeding head from the fork
// database's current best block.
func New(cfg Config) (*Controller, error) {
	head, err := cfg.Forks.Head()
	if nil != err {
		return nil, err
	}

	c := &Controller{
		log: logger.New("controller"),

		state:    cfg.State,
		token:    cfg.Token,
		forks:    cfg.Forks,
		blocklog: cfg.BlockLog,
		pool:     cfg.Pool,
		handlers: cfg.Handlers,
		bus:      cfg.Bus,
		metrics:  cfg.Metrics,

		properties:      cfg.Properties,
		domainAuthority: cfg.DomainAuthority,
		group:           cfg.Group,
		owner:           cfg.Owner,

		genesisConfiguration: cfg.Genesis,

		head: head,
	}

	cfg.Forks.SetIrreversibleCallback(c.onIrreversibleLocked)

	return c, nil
}

// Head - the controller's current head block state
func (c *Controller) Head() *chainblock.BlockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// HasPending - whether a block is currently under construction
func (c *Controller) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return nil != c.pending
}

func copyLastProduced(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// StartBlock - spec §4.5 start_block(when, confirm_count). producer
// is stamped into the new header immediately since Id()/Sign() both
// need a non-nil Producer (spec §9 open question: the production path
// is driven by an external producer plugin that owns this identity;
// apply_block's replay path overwrites the whole header with the
// candidate's own right after, so its choice of producer here is
// only ever the candidate's own).
//
// Preconditions: no pending state; state-store revision equals head's
// block number (invariant 1). On any failure the guard undoes the
// freshly opened session/savepoint before they ever reach c.pending.
func (c *Controller) StartBlock(when time.Time, confirmCount int, producer *account.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startBlockLocked(when, confirmCount, producer)
}

func (c *Controller) startBlockLocked(when time.Time, confirmCount int, producer *account.Account) error {
	if nil != c.pending {
		return fault.ErrPendingAlreadyOpen
	}
	if c.state.Revision() != c.head.Number() {
		return fault.ErrRevisionMismatch
	}

	tag := c.state.Revision()
	sess := c.state.StartUndoSession()
	c.token.StartSavepoint(tag)

	guard := NewGuard(func() {
		sess.Undo()
		c.token.RollbackToLatestSavepoint()
	})
	defer guard.Release()

	bs := &chainblock.BlockState{
		Block: &chainblock.Block{
			Header: chainblock.Header{
				Version:   constants.HeaderVersion,
				Previous:  c.head.Id,
				Number:    c.head.Number() + 1,
				Timestamp: when,
				Producer:  producer,
			},
		},
		ProducerLastProduced:     copyLastProduced(c.head.ProducerLastProduced),
		DposIrreversibleBlockNum: c.head.DposIrreversibleBlockNum,
		BftIrreversibleBlockNum:  c.head.BftIrreversibleBlockNum,
	}

	if err := c.promoteSchedule(bs); nil != err {
		return err
	}
	bs.Block.Header.ScheduleVersion = bs.ActiveSchedule.Version

	if nil == bs.ProducerLastProduced {
		bs.ProducerLastProduced = make(map[string]uint64)
	}
	bs.ProducerLastProduced[producer.String()] = bs.Number()
	bs.DposIrreversibleBlockNum = dposIrreversibleThreshold(bs.ActiveSchedule, bs.ProducerLastProduced)

	c.pending = &pendingState{
		session:      sess,
		tokenTag:     tag,
		block:        bs,
		confirmCount: confirmCount,
	}

	c.ClearExpiredInputTransactions()

	guard.Cancel()
	return nil
}

// FinalizeBlock - spec §4.5 finalize_block(): compute both merkle
// roots over the pending receipts, set the header id, and refresh the
// BlockSummary ring slot for this block number.
func (c *Controller) FinalizeBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalizeBlockLocked()
}

func (c *Controller) finalizeBlockLocked() error {
	if nil == c.pending {
		return fault.ErrNoPendingState
	}
	p := c.pending

	txs := make([]*chainblock.Transaction, 0, len(p.receipts))
	for _, r := range p.receipts {
		if nil != r.Trx {
			txs = append(txs, r.Trx)
		}
	}

	p.block.Block.Header.ActionMerkleRoot = chainblock.ActionMerkleRoot(txs)
	p.block.Block.Header.TransactionMerkleRoot = chainblock.TransactionMerkleRoot(txs)
	p.block.Block.Receipts = p.receipts
	p.block.Id = p.block.Block.Header.Id()

	blockring.Put(p.block.Number(), p.block.Id, nil)
	return nil
}

// SignBlock - spec §4.5 sign_block(callback, trust). trust=true skips
// the post-sign verification pass, used by apply_block's no-op
// resigning callback that just returns the block's embedded
// signature (spec §9, second open question).
func (c *Controller) SignBlock(signFn SignFunc, trust bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signBlockLocked(signFn, trust)
}

func (c *Controller) signBlockLocked(signFn SignFunc, trust bool) error {
	if nil == c.pending {
		return fault.ErrNoPendingState
	}

	if err := c.pending.block.Block.Header.Sign(signFn); nil != err {
		return err
	}
	if !trust {
		if err := c.pending.block.Block.Header.VerifySignature(); nil != err {
			return err
		}
	}
	return nil
}

// CommitBlock - spec §4.5 commit_block(add_to_fork_db).
//
// Unlike a same-process commit, the paired session/savepoint are not
// flushed here: they are appended to c.awaiting and stay open until
// on_irreversible actually reaches this block number, so a reorg can
// still pop it. "push() both sessions" is this deferral, not an
// immediate disk write (see statestore.Session's per-session overlay
// design and DESIGN.md).
func (c *Controller) CommitBlock(addToForkDB bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitBlockLocked(addToForkDB)
}

func (c *Controller) commitBlockLocked(addToForkDB bool) error {
	if nil == c.pending {
		return fault.ErrNoPendingState
	}
	p := c.pending
	bs := p.block

	if addToForkDB {
		inserted, err := c.forks.Add(bs, true)
		if nil != err {
			return err
		}
		c.forks.SetValidity(inserted, true)
		c.bus.Emit(signal.AcceptedBlockHeader, inserted)

		head, err := c.forks.Head()
		if nil != err {
			return err
		}
		if head.Id != inserted.Id {
			return fault.ErrHeadNotUpdated
		}
		c.forks.MarkInCurrentChain(inserted, true)
		c.head = inserted
		bs = inserted
	}

	c.bus.Emit(signal.AcceptedBlock, bs)

	if err := c.state.Advance(bs.Number()); nil != err {
		return err
	}

	c.awaiting = append(c.awaiting, committedSession{
		blockNum: bs.Number(),
		session:  p.session,
		tag:      p.tokenTag,
	})

	c.pending = nil

	c.metrics.blockApplied()
	c.metrics.setPendingPoolSize(c.pool.Len())

	c.forks.MaybeFireIrreversible(bs)
	return nil
}

// AbortBlock - spec §4.5 abort_block(): every pending transaction
// returns to the unapplied pool (signed_id keyed, last writer wins),
// then pending is dropped, implicitly rolling back both open sessions.
func (c *Controller) AbortBlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abortBlockLocked()
}

func (c *Controller) abortBlockLocked() {
	if nil == c.pending {
		return
	}
	p := c.pending

	for _, r := range p.receipts {
		if nil != r.Trx {
			c.pool.Put(r.Id.String(), r.Trx, r.Trx.Expiration)
		}
	}

	p.session.Undo()
	c.token.RollbackToLatestSavepoint()
	c.pending = nil

	c.metrics.setPendingPoolSize(c.pool.Len())
}
