package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdown(t *testing.T) {
	c := NewCountdown(3)
	assert.False(t, c.Expired())

	c.Tick(1)
	assert.False(t, c.Expired())
	assert.InDelta(t, 2, c.Remaining(), 1e-6)

	c.Tick(2)
	assert.True(t, c.Expired())

	c.Reset(5)
	assert.False(t, c.Expired())
	assert.InDelta(t, 5, c.Remaining(), 1e-6)
}

func TestRepeatTimerFiresOncePerPeriod(t *testing.T) {
	r := NewRepeatTimer(1)

	// First trigger comes one full period in.
	r.Tick(0.5)
	assert.False(t, r.JustTriggered())

	r.Tick(0.5)
	assert.True(t, r.JustTriggered())

	r.Tick(0.5)
	assert.False(t, r.JustTriggered())

	r.Tick(0.5)
	assert.True(t, r.JustTriggered())
}

func TestRepeatTimerRearmsAfterOversizedTick(t *testing.T) {
	r := NewRepeatTimer(1)

	// A tick much larger than the period fires once and clamps remaining
	// at zero rather than going negative.
	r.Tick(5)
	assert.True(t, r.JustTriggered())

	r.Tick(0.1)
	assert.True(t, r.JustTriggered())
}

func TestRepeatTimerReset(t *testing.T) {
	r := NewRepeatTimer(2)
	r.Tick(1.5)
	r.Reset()

	r.Tick(1.5)
	assert.False(t, r.JustTriggered())
	r.Tick(0.5)
	assert.True(t, r.JustTriggered())
}
