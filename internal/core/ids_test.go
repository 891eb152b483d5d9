package core

import (
	"testing"
	"time"
)

func TestClockIsStrictlyMonotonic(t *testing.T) {
	frozen := time.UnixMilli(1709251200000)
	c := NewClockAt(func() time.Time { return frozen })

	a, b, d := c.Next(), c.Next(), c.Next()
	if a != 1709251200000 || b != a+1 || d != b+1 {
		t.Fatalf("expected consecutive ids from frozen clock, got %d %d %d", a, b, d)
	}
}

func TestClockFollowsWallTime(t *testing.T) {
	now := time.UnixMilli(1000)
	c := NewClockAt(func() time.Time { return now })

	first := c.Next()
	now = time.UnixMilli(5000)
	if second := c.Next(); second != 5000 || second <= first {
		t.Fatalf("expected wall time id 5000, got %d", second)
	}
}

func TestClockObserve(t *testing.T) {
	c := NewClockAt(func() time.Time { return time.UnixMilli(1000) })
	c.Observe(9000)
	if id := c.Next(); id != 9001 {
		t.Fatalf("expected 9001 after observing 9000, got %d", id)
	}
	c.Observe(10) // older ids do not move the clock back
	if id := c.Next(); id != 9002 {
		t.Fatalf("expected 9002, got %d", id)
	}
}
