package core

import (
	"sync"
	"time"
)

// IDSource mints entry ids.
type IDSource interface {
	Next() ID
	// Observe records an id that exists already, so Next never returns it.
	Observe(id ID)
}

// Clock mints strictly increasing ids from wall-clock milliseconds. Two
// entries created within the same millisecond still get distinct ids.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt is NewClock with an injected time source, for tests.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Next() ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.now().UnixMilli()
	if n <= c.last {
		n = c.last + 1
	}
	c.last = n
	return ID(n)
}

func (c *Clock) Observe(id ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int64(id) > c.last {
		c.last = int64(id)
	}
}

// Sequence mints 1, 2, 3, ... It is deterministic and meant for tests.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

func (s *Sequence) Next() ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return ID(s.last)
}

func (s *Sequence) Observe(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int64(id) > s.last {
		s.last = int64(id)
	}
}
