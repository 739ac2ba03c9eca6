package engine

import (
	"fmt"
	"slices"

	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/stats"
)

// Entity pairs a stat table with its effect store. Both are owned
// exclusively by the entity and destroyed with it; the only cross-entity
// access the engine ever performs is a read-only stat lookup for non-local
// magnitudes.
type Entity[K stats.Kind] struct {
	ID      uint32
	Stats   *stats.Table[K]
	Effects *effect.Store[K]
}

// World is the entity registry the engine iterates. Entities are processed
// in ascending ID order every tick so cross-entity resolution is
// deterministic.
type World[K stats.Kind] struct {
	entities map[uint32]*Entity[K]
	order    []uint32
	nextID   uint32
}

// NewWorld returns an empty world. IDs are assigned from 1.
func NewWorld[K stats.Kind]() *World[K] {
	return &World[K]{entities: make(map[uint32]*Entity[K])}
}

// Spawn creates an entity with count declared stat ordinals, initialized in
// declaration order.
func (w *World[K]) Spawn(count int, init func(K) float32) (*Entity[K], error) {
	w.nextID++
	return w.spawnAt(w.nextID, count, init)
}

func (w *World[K]) spawnAt(id uint32, count int, init func(K) float32) (*Entity[K], error) {
	if _, ok := w.entities[id]; ok {
		return nil, fmt.Errorf("entity %d already exists", id)
	}
	table, err := stats.NewTable[K](count, init)
	if err != nil {
		return nil, fmt.Errorf("spawning entity %d: %w", id, err)
	}
	ent := &Entity[K]{ID: id, Stats: table, Effects: effect.NewStore[K]()}
	w.entities[id] = ent
	i, _ := slices.BinarySearch(w.order, id)
	w.order = slices.Insert(w.order, i, id)
	if id > w.nextID {
		w.nextID = id
	}
	return ent, nil
}

// Get returns the entity with the given ID.
func (w *World[K]) Get(id uint32) (*Entity[K], bool) {
	ent, ok := w.entities[id]
	return ent, ok
}

// Despawn removes the entity and everything it owns. Effects on other
// entities that reference it are dropped on the next tick they are observed.
func (w *World[K]) Despawn(id uint32) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	if i, ok := slices.BinarySearch(w.order, id); ok {
		w.order = slices.Delete(w.order, i, i+1)
	}
	return true
}

// Len returns the number of live entities.
func (w *World[K]) Len() int { return len(w.entities) }

// IDs returns the live entity IDs in ascending order. The returned slice is
// the world's own ordering; callers must not mutate it.
func (w *World[K]) IDs() []uint32 { return w.order }
