package engine

import (
	"math"

	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/event"
	"github.com/solrift/statfx/internal/stats"
)

const (
	unboundedUpper = float32(math.MaxFloat32)
	unboundedLower = float32(-math.MaxFloat32)
)

// resolveMagnitude turns an effect's configured magnitude into a concrete
// number against the owning entity. The second return is false only for a
// non-local magnitude whose remote entity no longer exists, which is the
// signal to drop the effect.
func (g *Engine[K]) resolveMagnitude(m effect.Magnitude[K], owner *Entity[K]) (float32, bool) {
	switch m.Kind {
	case effect.MagnitudeFixed:
		return m.Value, true
	case effect.MagnitudeLocalStat:
		return m.Scaling.Apply(owner.Stats.Current(m.Stat)), true
	case effect.MagnitudeNonLocalStat:
		src, ok := g.world.Get(m.Source)
		if !ok {
			return 0, false
		}
		return m.Scaling.Apply(src.Stats.Current(m.Stat)), true
	}
	return 0, true
}

// activeBounds collects the tightest upper and lower bound contributions on
// a stat. Persistent bounds use their recorded add-time magnitude; other
// durations resolve live. Unresolvable contributions are skipped here; the
// tick pass removes them.
func (g *Engine[K]) activeBounds(ent *Entity[K], k K) (upper, lower float32) {
	upper, lower = unboundedUpper, unboundedLower
	for _, a := range ent.Effects.All() {
		if a.Target != k {
			continue
		}
		if a.Calculation != effect.CalcUpperBound && a.Calculation != effect.CalcLowerBound {
			continue
		}
		amount := a.Applied
		if a.Duration.Kind != effect.DurationPersistent {
			v, ok := g.resolveMagnitude(a.Magnitude, ent)
			if !ok {
				continue
			}
			amount = v
		}
		if a.Calculation == effect.CalcUpperBound && amount < upper {
			upper = amount
		}
		if a.Calculation == effect.CalcLowerBound && amount > lower {
			lower = amount
		}
	}
	return upper, lower
}

// applyToCurrent applies one resolved contribution to the stat's current
// value and clamps against active bounds. This is the path for immediate
// adds, continuous per-second slices, and repeating triggers.
func (g *Engine[K]) applyToCurrent(ent *Entity[K], k K, calc effect.Calculation, amount float32) {
	if calc == effect.CalcNone {
		return
	}
	upper, lower := g.activeBounds(ent, k)
	st := ent.Stats.At(k)

	switch calc {
	case effect.CalcAdditive:
		st.Current += amount
	case effect.CalcMultiplicative:
		st.Current *= amount
	case effect.CalcLowerBound:
		if st.Current < amount {
			st.Current = amount
		}
	case effect.CalcUpperBound:
		if st.Current > amount {
			st.Current = amount
		}
	case effect.CalcSetValue:
		st.Current = amount
	}

	g.clampCurrent(ent.ID, k, st, upper, lower)
}

// recomputeStat rebuilds the persistent layer for one stat from recorded
// add-time magnitudes in the fixed precedence order: sum of additive, then
// product of multiplicative, then the last set-value override, then the
// tightest upper bound, then the tightest lower bound. Precedence, not
// insertion order, is what keeps repeated add/remove cycles drift-free.
//
// Current tracks the layer by the ratio of new to previous modified base, so
// removing a persistent effect subtracts or divides out exactly the value it
// applied while preserving consumed immediate/continuous deltas
// proportionally.
func (g *Engine[K]) recomputeStat(ent *Entity[K], k K) {
	var (
		additive       float32
		multiplicative float32 = 1
		setValue       *float32
	)
	upper, lower := unboundedUpper, unboundedLower

	for _, a := range ent.Effects.All() {
		if a.Target != k {
			continue
		}
		switch a.Calculation {
		case effect.CalcUpperBound, effect.CalcLowerBound:
			amount := a.Applied
			if a.Duration.Kind != effect.DurationPersistent {
				v, ok := g.resolveMagnitude(a.Magnitude, ent)
				if !ok {
					continue
				}
				amount = v
			}
			if a.Calculation == effect.CalcUpperBound && amount < upper {
				upper = amount
			}
			if a.Calculation == effect.CalcLowerBound && amount > lower {
				lower = amount
			}
		case effect.CalcAdditive, effect.CalcMultiplicative, effect.CalcSetValue:
			// Continuous and repeating contributions are consumed per
			// tick; layering them as well would double count.
			if a.Duration.Kind != effect.DurationPersistent {
				continue
			}
			switch a.Calculation {
			case effect.CalcAdditive:
				additive += a.Applied
			case effect.CalcMultiplicative:
				multiplicative *= a.Applied
			case effect.CalcSetValue:
				v := a.Applied
				setValue = &v
			}
		}
	}

	st := ent.Stats.At(k)
	newBase := (st.Base + additive) * multiplicative
	if setValue != nil {
		newBase = *setValue
	}
	if newBase > upper {
		newBase = upper
	}
	if newBase < lower {
		newBase = lower
	}

	prev := st.ModifiedBase
	st.ModifiedBase = newBase
	if prev != 0 {
		st.Current *= newBase / prev
	} else {
		st.Current += newBase - prev
	}

	g.clampCurrent(ent.ID, k, st, upper, lower)
}

// clampCurrent enforces active bounds on the current value, upper first,
// and notifies when a bound bites. Hitting a bound exactly still notifies;
// presentation systems key death and full-bar cues off that.
func (g *Engine[K]) clampCurrent(entity uint32, k K, st *stats.Stat, upper, lower float32) {
	if upper < unboundedUpper && st.Current >= upper {
		if st.Current > upper {
			st.Current = upper
		}
		g.bus.Publish(event.Event{
			Kind:    event.KindBoundsBreached,
			Entity:  entity,
			Ordinal: uint8(k),
			Bound:   event.BoundUpper,
		})
	}
	if lower > unboundedLower && st.Current <= lower {
		if st.Current < lower {
			st.Current = lower
		}
		g.bus.Publish(event.Event{
			Kind:    event.KindBoundsBreached,
			Entity:  entity,
			Ordinal: uint8(k),
			Bound:   event.BoundLower,
		})
	}
}
