package utils

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// RefCount is a shared-ownership counter. It is created holding a single reference, and
// reports the moment the last reference is released so that the owner can tear down exactly once.
//
// When Synchronized is false the counter is not safe for use across goroutines, which mirrors
// OptionalMutex: callers that confine an object to a single goroutine can skip atomics entirely.
type RefCount struct {
	Synchronized bool

	plain  int32
	shared atomic.Int32
}

// NewRefCount returns a counter holding one reference
func NewRefCount(synchronized bool) *RefCount {
	c := &RefCount{Synchronized: synchronized}
	if synchronized {
		c.shared.Store(1)
	} else {
		c.plain = 1
	}

	return c
}

// Acquire adds a reference. It returns false, and adds nothing, if the count has already
// reached zero.
func (c *RefCount) Acquire() bool {
	if !c.Synchronized {
		if c.plain <= 0 {
			return false
		}
		c.plain++
		return true
	}

	for {
		current := c.shared.Load()
		if current <= 0 {
			return false
		}

		if c.shared.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release drops a reference and returns true if it was the last one
func (c *RefCount) Release() bool {
	var remaining int32
	if c.Synchronized {
		remaining = c.shared.Add(-1)
	} else {
		c.plain--
		remaining = c.plain
	}

	if remaining < 0 {
		panic(errors.AssertionFailedf("reference count released past zero: %d", remaining))
	}

	return remaining == 0
}

// Count returns the number of live references
func (c *RefCount) Count() int {
	if c.Synchronized {
		return int(c.shared.Load())
	}

	return int(c.plain)
}
