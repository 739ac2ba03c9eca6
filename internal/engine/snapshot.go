package engine

import (
	"fmt"

	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/snapshot"
)

// ExportEntity captures an entity's durable state: base values per declared
// ordinal plus active persistent effects with their recorded magnitudes and
// remaining expiry.
func (g *Engine[K]) ExportEntity(id uint32) (snapshot.Entity, bool) {
	ent, ok := g.world.Get(id)
	if !ok {
		return snapshot.Entity{}, false
	}

	snap := snapshot.Entity{
		ID:    id,
		Bases: make([]float32, ent.Stats.Count()),
	}
	for i := range snap.Bases {
		snap.Bases[i] = ent.Stats.Base(K(i))
	}

	for _, a := range ent.Effects.All() {
		if a.Duration.Kind != effect.DurationPersistent {
			continue
		}
		row := snapshot.Effect{
			Instance:    a.Instance,
			Identity:    a.Identity,
			Target:      uint8(a.Target),
			Calculation: uint8(a.Calculation),
			Applied:     a.Applied,
		}
		if a.Duration.Timer != nil {
			remaining := a.Duration.Timer.Remaining()
			row.Remaining = &remaining
		}
		snap.Effects = append(snap.Effects, row)
	}
	return snap, true
}

// RestoreEntity rebuilds an entity from a snapshot. Persistent effects are
// replayed with their recorded add-time magnitudes as fixed values, keeping
// exact reversal intact across the round trip. Stacking policy is not
// re-applied; the snapshot records what was legitimately active.
func (g *Engine[K]) RestoreEntity(snap snapshot.Entity) error {
	ent, err := g.world.spawnAt(snap.ID, len(snap.Bases), func(k K) float32 {
		return snap.Bases[uint8(k)]
	})
	if err != nil {
		return fmt.Errorf("restoring entity %d: %w", snap.ID, err)
	}

	touched := make(map[K]struct{})
	for _, row := range snap.Effects {
		d := effect.Persistent()
		if row.Remaining != nil {
			d = effect.PersistentFor(*row.Remaining)
		}
		a := &effect.Active[K]{
			Effect: effect.Effect[K]{
				Identity:    row.Identity,
				Target:      K(row.Target),
				Calculation: effect.Calculation(row.Calculation),
				Magnitude:   effect.Fixed[K](row.Applied),
				Duration:    d,
			},
			Instance: row.Instance,
			Applied:  row.Applied,
		}
		ent.Effects.Put(a)
		touched[a.Target] = struct{}{}
	}

	for k := range touched {
		g.recomputeStat(ent, k)
	}
	return nil
}
