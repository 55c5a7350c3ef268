// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

// Status is the pool's capacity state, derived from its idle and
// borrowed counts whenever it is asked for.
type Status uint8

const (
	// StatusAvailable means an idle connection can be handed out.
	StatusAvailable Status = iota

	// StatusFullPool means every allowed connection is borrowed.
	StatusFullPool

	// StatusFullCache means the idle set is empty but capacity
	// remains; the next checkout refills it.
	StatusFullCache

	// StatusWaitingForFill means fewer than MinPoolCache slots remain
	// below the ceiling, so checkouts are refused until connections
	// are released.
	StatusWaitingForFill
)

var statusNames = [...]string{
	StatusAvailable:      "available",
	StatusFullPool:       "full_pool",
	StatusFullCache:      "full_cache",
	StatusWaitingForFill: "waiting_for_fill",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// deriveStatus computes the status; the checks are ordered.
func deriveStatus(idle, borrowed, minCache, maxSize int) Status {
	switch {
	case borrowed >= maxSize:
		return StatusFullPool
	case idle == 0:
		return StatusFullCache
	case maxSize-borrowed < minCache:
		return StatusWaitingForFill
	default:
		return StatusAvailable
	}
}
