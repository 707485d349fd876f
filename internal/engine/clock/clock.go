// Package clock implements the discrete tick/day counter that drives the
// simulation. There is no suspension and no wall-clock access: advancing
// time is a pure increment.
package clock

// Clock tracks tick-within-day and day. TicksPerDay must be >= 1; the
// caller validates this at configuration time (rtgssim/pkg/config).
type Clock struct {
	ticksPerDay int64
	tickInDay   int64
	day         int64
}

// New creates a Clock starting at day 0, tick 0.
func New(ticksPerDay int64) *Clock {
	return &Clock{ticksPerDay: ticksPerDay}
}

// Tick returns the current tick-in-day.
func (c *Clock) Tick() int64 { return c.tickInDay }

// Day returns the current day.
func (c *Clock) Day() int64 { return c.day }

// AbsoluteTick returns day*ticks_per_day + tick_in_day.
func (c *Clock) AbsoluteTick() int64 {
	return c.day*c.ticksPerDay + c.tickInDay
}

// IsEndOfDay reports whether the current tick is the final tick of the day,
// i.e. the tick that will wrap on the next Advance.
func (c *Clock) IsEndOfDay() bool {
	return c.tickInDay == c.ticksPerDay-1
}

// Advance moves the clock forward one tick, wrapping into the next day when
// ticksPerDay is reached.
func (c *Clock) Advance() {
	c.tickInDay++
	if c.tickInDay >= c.ticksPerDay {
		c.tickInDay = 0
		c.day++
	}
}
