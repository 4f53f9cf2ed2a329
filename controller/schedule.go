// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"sort"

	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
)

// promoteSchedule - the schedule half of start_block (spec §4.5):
// promote the parent's pending schedule to active if it is now due,
// then, if a producer-schedule change is proposed in GlobalProperties
// and has itself become DPoS-irreversible and no pending schedule
// slot was just filled, move it into pending.
func (c *Controller) promoteSchedule(bs *chainblock.BlockState) error {
	bs.ActiveSchedule = c.head.ActiveSchedule
	bs.PendingSchedule = c.head.PendingSchedule
	bs.PendingScheduleBlockNum = c.head.PendingScheduleBlockNum

	promoted := false
	if nil != bs.PendingSchedule && bs.PendingScheduleBlockNum <= bs.DposIrreversibleBlockNum {
		bs.ActiveSchedule = *bs.PendingSchedule
		bs.PendingSchedule = nil
		bs.PendingScheduleBlockNum = 0
		promoted = true
	}

	props, ok := c.properties.Get()
	if !ok || !props.HasProposedSchedule() {
		return nil
	}
	if props.ProposedScheduleBlockNum > bs.DposIrreversibleBlockNum {
		return nil
	}
	if nil != bs.PendingSchedule || promoted {
		return nil
	}

	schedule := *props.ProposedSchedule
	bs.PendingSchedule = &schedule
	bs.PendingScheduleBlockNum = bs.Number()

	props.ProposedSchedule = nil
	props.ProposedScheduleBlockNum = 0
	return c.properties.Put(props)
}

// SetProposedProducers - stage a producer-schedule change (spec §4.6).
// Succeeds only if no proposal is already pending for a block other
// than head+1, and the new schedule differs from whichever schedule
// is currently in effect (pending if one exists, else active).
func (c *Controller) SetProposedProducers(producers chainblock.ProducerSchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	props, _ := c.properties.Get()

	if props.HasProposedSchedule() && props.ProposedScheduleBlockNum != c.head.Number()+1 {
		return fault.ErrInvalidRefBlock
	}

	current := c.head.ActiveSchedule
	if nil != c.head.PendingSchedule {
		current = *c.head.PendingSchedule
	}
	if scheduleEqual(current, producers) {
		return fault.ErrDuplicateTransaction
	}

	producers.Version = current.Version + 1
	props.ProposedSchedule = &producers
	props.ProposedScheduleBlockNum = c.head.Number() + 1
	return c.properties.Put(props)
}

func scheduleEqual(a, b chainblock.ProducerSchedule) bool {
	if len(a.Producers) != len(b.Producers) {
		return false
	}
	for i := range a.Producers {
		if a.Producers[i].Producer.String() != b.Producers[i].Producer.String() {
			return false
		}
		if a.Producers[i].Weight != b.Producers[i].Weight {
			return false
		}
	}
	return true
}

// dposIrreversibleThreshold - a simplified DPoS irreversibility
// computation (see DESIGN.md): the highest block number such that at
// least a 2/3+1-style quorum of the active schedule's producers have
// each produced a block at or beyond it. lastProduced holds, per
// producer account string, the highest block number they have
// produced on this branch.
func dposIrreversibleThreshold(schedule chainblock.ProducerSchedule, lastProduced map[string]uint64) uint64 {
	n := len(schedule.Producers)
	if 0 == n {
		return 0
	}
	values := make([]uint64, 0, n)
	for _, entry := range schedule.Producers {
		values = append(values, lastProduced[entry.Producer.String()])
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })

	idx := (2 * n) / 3
	if idx >= n {
		idx = n - 1
	}
	return values[idx]
}
