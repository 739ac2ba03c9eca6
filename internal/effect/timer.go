package effect

// Countdown is an opaque countdown over float32 seconds. Zero or negative
// remaining means expired.
type Countdown struct {
	remaining float32
}

// NewCountdown returns a countdown with the given seconds remaining.
func NewCountdown(seconds float32) *Countdown {
	return &Countdown{remaining: seconds}
}

// Tick advances the countdown by dt seconds.
func (c *Countdown) Tick(dt float32) { c.remaining -= dt }

// Remaining returns the seconds left; may be negative after expiry.
func (c *Countdown) Remaining() float32 { return c.remaining }

// Expired reports whether the countdown has elapsed.
func (c *Countdown) Expired() bool { return c.remaining <= 0 }

// Reset rewinds the countdown to the given seconds.
func (c *Countdown) Reset(seconds float32) { c.remaining = seconds }

// RepeatTimer fires once per period. The first trigger comes one full period
// after creation. On expiry the period is added back so cadence is preserved
// across oversized ticks, clamped so remaining never goes negative.
type RepeatTimer struct {
	period    float32
	remaining float32
	triggered bool
}

// NewRepeatTimer returns a repeat timer with the given period in seconds.
func NewRepeatTimer(period float32) *RepeatTimer {
	return &RepeatTimer{period: period, remaining: period}
}

// Tick advances the timer by dt seconds and latches the trigger flag for
// this tick.
func (r *RepeatTimer) Tick(dt float32) {
	r.remaining -= dt
	if r.remaining <= 0 {
		r.remaining += r.period
		if r.remaining < 0 {
			r.remaining = 0
		}
		r.triggered = true
	} else {
		r.triggered = false
	}
}

// JustTriggered reports whether the period elapsed on the most recent tick.
func (r *RepeatTimer) JustTriggered() bool { return r.triggered }

// Period returns the configured period in seconds.
func (r *RepeatTimer) Period() float32 { return r.period }

// Reset rewinds the timer to a full period.
func (r *RepeatTimer) Reset() {
	r.remaining = r.period
	r.triggered = false
}
