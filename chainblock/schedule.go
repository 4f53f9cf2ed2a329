// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainblock

import (
	"encoding/binary"

	"github.com/bitmark-inc/chaincore/account"
)

// ProducerScheduleEntry - one slot in an active or proposed schedule
type ProducerScheduleEntry struct {
	Producer *account.Account
	Weight   uint32
}

// ProducerSchedule - an ordered, versioned list of producers
//
// Version increments by one every time the list of producers changes;
// it never resets. The controller compares Version rather than
// diffing the producer list to decide whether a pending schedule has
// already taken effect.
type ProducerSchedule struct {
	Version   uint32
	Producers []ProducerScheduleEntry
}

// IndexOf - the schedule slot for account, or -1 if account is not a
// scheduled producer
func (s *ProducerSchedule) IndexOf(a *account.Account) int {
	if nil == s {
		return -1
	}
	for i, e := range s.Producers {
		if e.Producer.String() == a.String() {
			return i
		}
	}
	return -1
}

// pack - a deterministic byte encoding used only to fold a schedule
// into a header's id computation; not a wire format
func (s *ProducerSchedule) pack() []byte {
	if nil == s {
		return []byte{0}
	}
	buf := make([]byte, 0, 5+len(s.Producers)*40)
	buf = append(buf, 1)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], s.Version)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(s.Producers)))
	buf = append(buf, tmp[:]...)
	for _, e := range s.Producers {
		pk := e.Producer.PublicKeyBytes()
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(pk)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, pk...)
		binary.LittleEndian.PutUint32(tmp[:], e.Weight)
		buf = append(buf, tmp[:]...)
	}
	return buf
}
