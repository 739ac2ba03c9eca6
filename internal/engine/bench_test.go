package engine

import (
	"testing"

	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/event"
	"github.com/solrift/statfx/internal/stats"
)

func BenchmarkTick(b *testing.B) {
	g := New(NewWorld[attr](), effect.NewPolicyTable(), event.NewBus())

	var prev uint32
	for i := 0; i < 1000; i++ {
		ent, err := g.World().Spawn(int(attrCount), func(k attr) float32 { return 100 })
		if err != nil {
			b.Fatal(err)
		}
		g.AddEffect(ent.ID, persistentAdd("blessing", 25))
		g.AddEffect(ent.ID, persistentBound("death_floor", effect.CalcLowerBound, 0))
		g.AddEffect(ent.ID, effect.Effect[attr]{
			Identity:    "poison",
			Target:      health,
			Calculation: effect.CalcAdditive,
			Magnitude:   effect.Fixed[attr](-1),
			Duration:    effect.Continuous(),
		})
		g.AddEffect(ent.ID, effect.Effect[attr]{
			Identity:    "regen",
			Target:      health,
			Calculation: effect.CalcAdditive,
			Magnitude:   effect.FromStat(healthRegen, stats.DefaultScaling()),
			Duration:    effect.Repeating(1),
		})
		if prev != 0 {
			g.AddEffect(ent.ID, effect.Effect[attr]{
				Identity:    "siphon",
				Target:      health,
				Calculation: effect.CalcAdditive,
				Magnitude: effect.FromRemoteStat(strength, stats.ScalingParams{
					Multiplier: -0.1,
					Exponent:   1,
				}, prev),
				Duration: effect.Continuous(),
			})
		}
		prev = ent.ID
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Tick(0.05)
	}
}
