package engine

import (
	"log/slog"
	"sync"

	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/event"
	"github.com/solrift/statfx/internal/stats"
)

// Engine is the per-tick lifecycle driver: it applies add/remove requests,
// advances timers, resolves magnitudes, recomputes stat values in a fixed
// deterministic order, expires effects, and raises notifications.
//
// All resolution work is single-threaded within Tick. The pending request
// queue is the only part touched from other goroutines; requests queued
// before a tick boundary are fully applied before that tick resolves any
// magnitude.
type Engine[K stats.Kind] struct {
	world    *World[K]
	policies *effect.PolicyTable
	bus      *event.Bus

	mu      sync.Mutex
	pending []request[K]
}

type requestKind uint8

const (
	requestAdd requestKind = iota
	requestRemove
)

type request[K stats.Kind] struct {
	kind     requestKind
	target   uint32
	effect   effect.Effect[K]
	identity string
}

// New returns an engine over the given world. The policy table is read-only
// configuration; the bus receives all notifications.
func New[K stats.Kind](world *World[K], policies *effect.PolicyTable, bus *event.Bus) *Engine[K] {
	return &Engine[K]{world: world, policies: policies, bus: bus}
}

// World returns the engine's entity registry.
func (g *Engine[K]) World() *World[K] { return g.world }

// AddEffect applies an effect to the target entity immediately. The request
// is filtered through the stacking policy for its identity; a rejected add
// is a silent no-op. Unknown targets are no-ops.
func (g *Engine[K]) AddEffect(target uint32, e effect.Effect[K]) {
	g.applyAdd(target, e)
}

// RemoveEffect removes all active effects with the given identity from the
// target entity, reversing persistent ones exactly.
func (g *Engine[K]) RemoveEffect(target uint32, identity string) {
	g.applyRemove(target, identity)
}

// QueueAddEffect records an add request to be applied at the start of the
// next tick. Safe to call from other goroutines.
func (g *Engine[K]) QueueAddEffect(target uint32, e effect.Effect[K]) {
	g.mu.Lock()
	g.pending = append(g.pending, request[K]{kind: requestAdd, target: target, effect: e})
	g.mu.Unlock()
}

// QueueRemoveEffect records a remove request to be applied at the start of
// the next tick. Safe to call from other goroutines.
func (g *Engine[K]) QueueRemoveEffect(target uint32, identity string) {
	g.mu.Lock()
	g.pending = append(g.pending, request[K]{kind: requestRemove, target: target, identity: identity})
	g.mu.Unlock()
}

// SetBase overwrites a stat's base value and recomputes it so active
// persistent contributions reapply on top of the new base.
func (g *Engine[K]) SetBase(target uint32, k K, v float32) {
	ent, ok := g.world.Get(target)
	if !ok {
		return
	}
	ent.Stats.SetBase(k, v)
	g.recomputeStat(ent, k)
}

// HasEffect reports whether any effect with the given identity is active on
// the entity. This is how hosts observe marker effects.
func (g *Engine[K]) HasEffect(target uint32, identity string) bool {
	ent, ok := g.world.Get(target)
	if !ok {
		return false
	}
	return ent.Effects.HasIdentity(identity)
}

// ActiveIdentities returns the distinct effect identities active on the
// entity, in first-seen order.
func (g *Engine[K]) ActiveIdentities(target uint32) []string {
	ent, ok := g.world.Get(target)
	if !ok {
		return nil
	}
	return ent.Effects.Identities()
}

// Tick advances the simulation by dt seconds: drains queued requests, then
// walks entities in ascending ID order resolving and applying their effects.
func (g *Engine[K]) Tick(dt float32) {
	g.drainPending()
	for _, id := range g.world.IDs() {
		ent, ok := g.world.Get(id)
		if !ok {
			continue
		}
		g.tickEntity(ent, dt)
	}
}

func (g *Engine[K]) drainPending() {
	g.mu.Lock()
	queued := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, r := range queued {
		switch r.kind {
		case requestAdd:
			g.applyAdd(r.target, r.effect)
		case requestRemove:
			g.applyRemove(r.target, r.identity)
		}
	}
}

func (g *Engine[K]) applyAdd(target uint32, e effect.Effect[K]) {
	ent, ok := g.world.Get(target)
	if !ok {
		slog.Debug("add effect on unknown entity", "entity", target, "identity", e.Identity)
		return
	}

	if e.Duration.Kind == effect.DurationImmediate {
		amount, ok := g.resolveMagnitude(e.Magnitude, ent)
		if !ok {
			return
		}
		g.applyToCurrent(ent, e.Target, e.Calculation, amount)
		g.bus.Publish(event.Event{
			Kind:     event.KindEffectAdded,
			Entity:   target,
			Identity: e.Identity,
		})
		return
	}

	a := effect.NewActive(e)
	if e.Duration.Kind == effect.DurationPersistent {
		amount, ok := g.resolveMagnitude(e.Magnitude, ent)
		if !ok {
			return
		}
		a.Applied = amount
	}

	added, reset := ent.Effects.Add(a, g.policies.Lookup(e.Identity))
	if !added {
		if reset {
			slog.Debug("effect merged by timer reset", "entity", target, "identity", e.Identity)
		}
		return
	}

	if e.Duration.Kind == effect.DurationPersistent {
		g.recomputeStat(ent, e.Target)
	}
	g.bus.Publish(event.Event{
		Kind:     event.KindEffectAdded,
		Entity:   target,
		Identity: e.Identity,
		Instance: a.Instance.String(),
	})
}

func (g *Engine[K]) applyRemove(target uint32, identity string) {
	ent, ok := g.world.Get(target)
	if !ok {
		return
	}
	for _, a := range ent.Effects.RemoveIdentity(identity) {
		if a.Duration.Kind == effect.DurationPersistent {
			g.recomputeStat(ent, a.Target)
		}
		g.publishRemoved(target, a, event.ReasonExplicit)
	}
}

type removal struct {
	idx    int
	reason event.RemovalReason
}

func (g *Engine[K]) tickEntity(ent *Entity[K], dt float32) {
	all := ent.Effects.All()
	if len(all) == 0 {
		return
	}

	for _, a := range all {
		if a.Duration.Timer != nil {
			a.Duration.Timer.Tick(dt)
		}
		if a.Duration.Period != nil {
			a.Duration.Period.Tick(dt)
		}
	}

	var removals []removal
	for i, a := range all {
		amount, ok := g.resolveMagnitude(a.Magnitude, ent)
		if !ok {
			// Remote entity is gone; no contribution this tick.
			removals = append(removals, removal{idx: i, reason: event.ReasonStaleSource})
			continue
		}

		if a.Duration.Timer != nil && a.Duration.Timer.Expired() {
			removals = append(removals, removal{idx: i, reason: event.ReasonExpired})
		}

		// The expiring tick still contributes.
		switch a.Duration.Kind {
		case effect.DurationContinuous:
			g.applyToCurrent(ent, a.Target, a.Calculation, amount*dt)
		case effect.DurationRepeating:
			if a.Duration.Period.JustTriggered() {
				g.bus.Publish(event.Event{
					Kind:     event.KindRepeatingTriggered,
					Entity:   ent.ID,
					Identity: a.Identity,
					Instance: a.Instance.String(),
				})
				g.applyToCurrent(ent, a.Target, a.Calculation, amount)
			}
		}
	}

	for i := len(removals) - 1; i >= 0; i-- {
		r := removals[i]
		a := ent.Effects.RemoveAt(r.idx)
		if a.Duration.Kind == effect.DurationPersistent {
			g.recomputeStat(ent, a.Target)
		}
		g.publishRemoved(ent.ID, a, r.reason)
	}
}

func (g *Engine[K]) publishRemoved(target uint32, a *effect.Active[K], reason event.RemovalReason) {
	g.bus.Publish(event.Event{
		Kind:     event.KindEffectRemoved,
		Entity:   target,
		Identity: a.Identity,
		Instance: a.Instance.String(),
		Reason:   reason,
	})
}
