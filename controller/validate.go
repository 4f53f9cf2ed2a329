// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package controller

import (
	"github.com/bitmark-inc/chaincore/blockring"
	"github.com/bitmark-inc/chaincore/chainblock"
	"github.com/bitmark-inc/chaincore/fault"
)

// validateExpiration - spec §4.6 validate_expiration(trx)
func (c *Controller) validateExpiration(trx *chainblock.Transaction) error {
	now := c.pending.blockTime()
	if trx.Expiration.Before(now) {
		return fault.ErrExpiredTransaction
	}
	props, ok := c.properties.Get()
	maxLifetime := c.genesisConfiguration.MaxTransactionLifetime
	if ok {
		maxLifetime = props.Configuration.MaxTransactionLifetime
	}
	if trx.Expiration.After(now.Add(maxLifetime)) {
		return fault.ErrTxExpiryTooFar
	}
	return nil
}

// validateTapos - spec §4.6 validate_tapos(trx)
func (c *Controller) validateTapos(trx *chainblock.Transaction) error {
	if blockring.Prefix(uint64(trx.RefBlockNum)) != trx.RefBlockPrefix {
		return fault.ErrInvalidRefBlock
	}
	return nil
}

// ClearExpiredInputTransactions - spec §4.5 clear_expired_input_transactions()
func (c *Controller) ClearExpiredInputTransactions() int {
	return c.pool.ClearExpired(c.pending.blockTime())
}
