// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import "github.com/prometheus/client_golang/prometheus"

// Metrics - optional Prometheus instrumentation for the block
// lifecycle. A nil *Metrics is valid everywhere in this package: every
// method is a no-op on a nil receiver, so wiring metrics is opt-in.
type Metrics struct {
	blocksApplied        prometheus.Counter
	blocksPopped         prometheus.Counter
	transactionsApplied  prometheus.Counter
	transactionsObjective prometheus.Counter
	transactionsSubjective prometheus.Counter
	reorgDepth           prometheus.Histogram
	pendingPoolSize      prometheus.Gauge
}

// NewMetrics - build a fresh set of collectors under namespace. Call
// MustRegister to expose them.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		blocksApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "blocks_applied_total",
			Help: "Blocks successfully applied to the current chain.",
		}),
		blocksPopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "blocks_popped_total",
			Help: "Blocks popped off the current chain by a reorg.",
		}),
		transactionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transactions_applied_total",
			Help: "Transactions that executed without exception.",
		}),
		transactionsObjective: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transactions_objective_failures_total",
			Help: "Transactions removed from the unapplied pool by an objective failure.",
		}),
		transactionsSubjective: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transactions_subjective_failures_total",
			Help: "Transactions retained in the unapplied pool by a subjective failure.",
		}),
		reorgDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "reorg_depth_blocks",
			Help:    "Number of blocks popped per fork switch.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		pendingPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "unapplied_pool_size",
			Help: "Current number of transactions held in the unapplied pool.",
		}),
	}
}

// MustRegister - register every collector with reg
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	if nil == m {
		return
	}
	reg.MustRegister(
		m.blocksApplied, m.blocksPopped,
		m.transactionsApplied, m.transactionsObjective, m.transactionsSubjective,
		m.reorgDepth, m.pendingPoolSize,
	)
}

func (m *Metrics) blockApplied() {
	if nil != m {
		m.blocksApplied.Inc()
	}
}

func (m *Metrics) blockPopped() {
	if nil != m {
		m.blocksPopped.Inc()
	}
}

func (m *Metrics) transactionApplied() {
	if nil != m {
		m.transactionsApplied.Inc()
	}
}

func (m *Metrics) transactionObjectiveFailure() {
	if nil != m {
		m.transactionsObjective.Inc()
	}
}

func (m *Metrics) transactionSubjectiveFailure() {
	if nil != m {
		m.transactionsSubjective.Inc()
	}
}

func (m *Metrics) observeReorgDepth(n int) {
	if nil != m {
		m.reorgDepth.Observe(float64(n))
	}
}

func (m *Metrics) setPendingPoolSize(n int) {
	if nil != m {
		m.pendingPoolSize.Set(float64(n))
	}
}
