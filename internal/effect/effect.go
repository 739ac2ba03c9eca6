package effect

import (
	"errors"

	"github.com/google/uuid"

	"github.com/solrift/statfx/internal/stats"
)

// Calculation selects how an effect's magnitude combines with the target
// stat. Recomputation applies kinds in a fixed precedence order (additive,
// multiplicative, set-value, upper bounds, lower bounds) regardless of
// insertion order.
type Calculation uint8

const (
	// CalcNone marks a tag-only effect: it occupies the store and
	// participates in stacking and expiry but changes no stat.
	CalcNone Calculation = iota
	CalcAdditive
	CalcMultiplicative
	CalcLowerBound
	CalcUpperBound
	CalcSetValue
)

func (c Calculation) String() string {
	switch c {
	case CalcNone:
		return "none"
	case CalcAdditive:
		return "additive"
	case CalcMultiplicative:
		return "multiplicative"
	case CalcLowerBound:
		return "lower_bound"
	case CalcUpperBound:
		return "upper_bound"
	case CalcSetValue:
		return "set_value"
	}
	return "unknown"
}

// MagnitudeKind selects how an effect's magnitude is resolved.
type MagnitudeKind uint8

const (
	MagnitudeFixed MagnitudeKind = iota
	MagnitudeLocalStat
	MagnitudeNonLocalStat
)

// Magnitude is the numeric size of an effect's contribution: a fixed value,
// or derived from a stat on the owning entity or on a remote one.
type Magnitude[K stats.Kind] struct {
	Kind    MagnitudeKind
	Value   float32 // MagnitudeFixed
	Stat    K       // source stat for LocalStat / NonLocalStat
	Scaling stats.ScalingParams
	Source  uint32 // remote entity for NonLocalStat
}

// Fixed returns a static magnitude.
func Fixed[K stats.Kind](v float32) Magnitude[K] {
	return Magnitude[K]{Kind: MagnitudeFixed, Value: v}
}

// FromStat returns a magnitude derived from a stat on the owning entity.
func FromStat[K stats.Kind](k K, p stats.ScalingParams) Magnitude[K] {
	return Magnitude[K]{Kind: MagnitudeLocalStat, Stat: k, Scaling: p}
}

// FromRemoteStat returns a magnitude derived from a stat on another entity,
// read-only. If the remote entity ceases to exist the effect is removed on
// the next tick it is observed.
func FromRemoteStat[K stats.Kind](k K, p stats.ScalingParams, source uint32) Magnitude[K] {
	return Magnitude[K]{Kind: MagnitudeNonLocalStat, Stat: k, Scaling: p, Source: source}
}

// DurationKind selects the lifecycle of an effect.
type DurationKind uint8

const (
	// DurationImmediate applies once at add time and is never stored.
	DurationImmediate DurationKind = iota
	// DurationPersistent applies once at add time and is exactly reversed
	// on removal or expiry.
	DurationPersistent
	// DurationContinuous applies magnitude*dt every tick, magnitude in
	// units per second.
	DurationContinuous
	// DurationRepeating applies a discrete contribution each time its
	// period elapses.
	DurationRepeating
)

// Duration pairs a lifecycle kind with its timers. Timer is the optional
// overall expiry countdown; Period is set for repeating effects only.
type Duration struct {
	Kind   DurationKind
	Timer  *Countdown
	Period *RepeatTimer
}

// Immediate returns an apply-once-and-discard duration.
func Immediate() Duration { return Duration{Kind: DurationImmediate} }

// Persistent returns a duration that lasts until explicit removal.
func Persistent() Duration { return Duration{Kind: DurationPersistent} }

// PersistentFor returns a persistent duration that expires after seconds.
func PersistentFor(seconds float32) Duration {
	return Duration{Kind: DurationPersistent, Timer: NewCountdown(seconds)}
}

// Continuous returns a per-second duration with no expiry.
func Continuous() Duration { return Duration{Kind: DurationContinuous} }

// ContinuousFor returns a per-second duration that expires after seconds.
func ContinuousFor(seconds float32) Duration {
	return Duration{Kind: DurationContinuous, Timer: NewCountdown(seconds)}
}

// Repeating returns a duration firing every period seconds, with no overall
// expiry.
func Repeating(period float32) Duration {
	return Duration{Kind: DurationRepeating, Period: NewRepeatTimer(period)}
}

// RepeatingFor returns a duration firing every period seconds and expiring
// after seconds.
func RepeatingFor(period, seconds float32) Duration {
	return Duration{Kind: DurationRepeating, Period: NewRepeatTimer(period), Timer: NewCountdown(seconds)}
}

// clone deep-copies the timers so stored effects never share countdown state
// with the caller's template.
func (d Duration) clone() Duration {
	if d.Timer != nil {
		t := *d.Timer
		d.Timer = &t
	}
	if d.Period != nil {
		p := *d.Period
		d.Period = &p
	}
	return d
}

// ErrNoTimer is returned by SetDuration when the effect carries no expiry
// countdown.
var ErrNoTimer = errors.New("effect has no duration timer")

// Effect is one modifier instance targeting a single stat. Identity is a
// caller-chosen key used for stacking and bulk removal, distinct from the
// effect's runtime data.
type Effect[K stats.Kind] struct {
	Identity    string
	Target      K
	Calculation Calculation
	Magnitude   Magnitude[K]
	Duration    Duration
}

// Marker returns a tag-only effect: it modifies nothing but makes Identity
// observable on the entity while active. Pass seconds <= 0 for no expiry.
func Marker[K stats.Kind](identity string, seconds float32) Effect[K] {
	d := Persistent()
	if seconds > 0 {
		d = PersistentFor(seconds)
	}
	return Effect[K]{
		Identity:    identity,
		Calculation: CalcNone,
		Magnitude:   Fixed[K](0),
		Duration:    d,
	}
}

// SetDuration rewinds the effect's expiry countdown to the given seconds.
func (e *Effect[K]) SetDuration(seconds float32) error {
	if e.Duration.Timer == nil {
		return ErrNoTimer
	}
	e.Duration.Timer.Reset(seconds)
	return nil
}

// Active is a stored effect instance. Instance identifies this particular
// application in events and persistence. Applied records the magnitude
// resolved at add time for persistent effects, so removal reverses exactly
// the value that was applied.
type Active[K stats.Kind] struct {
	Effect[K]
	Instance uuid.UUID
	Applied  float32
}

// NewActive wraps an effect for storage, deep-copying its timers and
// assigning a fresh instance ID.
func NewActive[K stats.Kind](e Effect[K]) *Active[K] {
	e.Duration = e.Duration.clone()
	return &Active[K]{Effect: e, Instance: uuid.New()}
}
