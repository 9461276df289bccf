package testutil

import (
	"strconv"
	"time"
)

// SteppingClock is a deterministic time source for tests. Every call to
// Now returns the previous instant advanced by a fixed step, so pass
// reports get distinct but reproducible timestamps.
type SteppingClock struct {
	current time.Time
	step    time.Duration
}

// NewSteppingClock creates a clock starting at base.
func NewSteppingClock(base time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{current: base, step: step}
}

// Now returns the next instant.
func (c *SteppingClock) Now() time.Time {
	t := c.current
	c.current = c.current.Add(c.step)
	return t
}

// StubTokens is a deterministic run-token generator for tests.
type StubTokens struct {
	prefix string
	n      int
}

// NewStubTokens creates a generator producing "<prefix>-1", "<prefix>-2", …
func NewStubTokens(prefix string) *StubTokens {
	return &StubTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *StubTokens) Generate() string {
	g.n++
	return g.prefix + "-" + strconv.Itoa(g.n)
}
