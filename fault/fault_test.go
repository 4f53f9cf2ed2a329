// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/bitmark-inc/chaincore/fault"
)

// test that the objective/subjective split used by the controller's
// error taxonomy (spec §7) is distinguishable without string matching
func TestObjectiveSubjectiveClassification(t *testing.T) {
	errorList := []struct {
		err         error
		isObjective bool
	}{
		{fault.ErrTxMissingSigs, true},
		{fault.ErrExpiredTransaction, true},
		{fault.ErrInvalidRefBlock, true},
		{fault.ErrDeadlineExceeded, false},
	}

	for i, item := range errorList {
		if fault.IsObjective(item.err) != item.isObjective {
			t.Errorf("%d: %q objective classification mismatch", i, item.err)
		}
	}
}

func TestErrorClassesDistinct(t *testing.T) {
	var objective error = fault.ErrTxMissingSigs
	var subjective error = fault.ErrDeadlineExceeded

	if fault.IsSubjective(objective) {
		t.Error("objective error misclassified as subjective")
	}
	if fault.IsObjective(subjective) {
		t.Error("subjective error misclassified as objective")
	}
}
