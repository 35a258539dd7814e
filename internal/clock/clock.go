// Package clock abstrae la hora actual para que las reglas de fecha sean testeables.
package clock

import (
	"sync"
	"time"
)

// Clock fuente de la hora actual.
type Clock interface {
	Now() time.Time
}

// System reloj real.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// FakeClock reloj manual para tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Fixed reloj detenido en t (CLI con --today).
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
