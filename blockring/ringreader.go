// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockring

// RingReader - diagnostic iterator over the CRC check codes most
// recently written to the ring, walking backwards from the current
// height and stopping after at most Slots entries; like Id/Prefix it
// does not check which block number last wrote a slot
type RingReader struct {
	stop    uint64
	current uint64
	crc     uint64
}

// NewRingReader - start of ring iterator
func NewRingReader() *RingReader {
	globalData.RLock()
	h := globalData.height
	globalData.RUnlock()

	stop := uint64(0)
	if h >= Slots {
		stop = h - Slots + 1
	}
	return &RingReader{
		stop:    stop,
		current: h,
	}
}

// Next - fetch item from ring, working backwards towards genesis
func (r *RingReader) Next() bool {
	if r.current < r.stop {
		return false
	}
	globalData.RLock()
	r.crc = globalData.ring[slot(r.current)].crc
	globalData.RUnlock()
	if 0 == r.current {
		r.stop = 1 // force termination, blockNum is unsigned
		return true
	}
	r.current -= 1
	return true
}

// GetCRC - read the fetched value
func (r *RingReader) GetCRC() uint64 {
	return r.crc
}
