package quiz

import "time"

// DefaultTimeLimit is the per-question drawing time.
const DefaultTimeLimit = 30 * time.Second

// Countdown is a per-question timer decremented by external 1-second ticks.
//
// Every Start or Resume opens a new generation. Ticks carry the generation
// they were scheduled for, and ticks from any other generation are ignored,
// so a timer that already fired (or was stopped) can never act twice.
type Countdown struct {
	limit      int
	remaining  int
	generation uint64
	running    bool
}

// NewCountdown creates a stopped countdown. Limits under one second are
// rounded up to one second.
func NewCountdown(limit time.Duration) *Countdown {
	secs := int(limit / time.Second)
	if secs < 1 {
		secs = 1
	}
	return &Countdown{limit: secs, remaining: secs}
}

// Start resets the remaining time to the limit and returns the new generation.
func (c *Countdown) Start() uint64 {
	c.generation++
	c.remaining = c.limit
	c.running = true
	return c.generation
}

// Resume restarts a stopped countdown from where it left off. Returns 0 if
// there is no time left.
func (c *Countdown) Resume() uint64 {
	if c.remaining <= 0 {
		return 0
	}
	c.generation++
	c.running = true
	return c.generation
}

// Stop cancels the countdown. Stopping a stopped countdown is a no-op.
func (c *Countdown) Stop() {
	c.running = false
}

// Tick decrements the counter if gen is the active generation. timedOut is
// true exactly once per generation, on the tick that reaches zero.
func (c *Countdown) Tick(gen uint64) (remaining int, timedOut bool) {
	if !c.running || gen != c.generation {
		return c.remaining, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		return 0, true
	}
	return c.remaining, false
}

func (c *Countdown) Remaining() int     { return c.remaining }
func (c *Countdown) Limit() int         { return c.limit }
func (c *Countdown) Generation() uint64 { return c.generation }
func (c *Countdown) Running() bool      { return c.running }

// Fraction returns the remaining share of the limit in [0, 1].
func (c *Countdown) Fraction() float64 {
	if c.limit == 0 {
		return 0
	}
	return float64(c.remaining) / float64(c.limit)
}
