package stats

import "fmt"

// Limit is the fixed slot capacity of a Table. Tables always carry this many
// slots regardless of how many ordinals the caller's stat kind declares;
// unused trailing slots stay zeroed and inert.
const Limit = 16

// Kind constrains a caller-defined stat enumeration. Ordinals must be
// assigned contiguously starting at 0, matching the order the initializer
// enumerates them in. This is a caller contract, validated at table
// construction.
type Kind interface{ ~uint8 }

// Stat is one attribute slot on an entity.
//
// Base is the caller-supplied value. ModifiedBase is the deterministic
// recomputation of Base plus all active persistent contributions; it is
// rebuilt from scratch whenever the persistent layer changes, never
// incrementally adjusted. Current is the runtime value that immediate,
// continuous and repeating applications consume; it tracks ModifiedBase
// proportionally so that removing a persistent effect reverses exactly what
// it applied.
//
// Only the lifecycle engine writes ModifiedBase and Current.
type Stat struct {
	Base         float32
	ModifiedBase float32
	Current      float32
}

// Table holds the stats of a single entity in a fixed-size array indexed by
// stat ordinal. It is owned exclusively by its entity and destroyed with it.
type Table[K Kind] struct {
	slots [Limit]Stat
	count int
}

// NewTable builds a table for count declared ordinals, invoking init for
// each in declaration order. Base, ModifiedBase and Current all start at the
// initializer's value.
func NewTable[K Kind](count int, init func(K) float32) (*Table[K], error) {
	if count <= 0 || count > Limit {
		return nil, fmt.Errorf("stat kind count %d out of range 1..%d", count, Limit)
	}
	t := &Table[K]{count: count}
	for i := 0; i < count; i++ {
		v := init(K(i))
		t.slots[i] = Stat{Base: v, ModifiedBase: v, Current: v}
	}
	return t, nil
}

// Count returns the number of declared ordinals.
func (t *Table[K]) Count() int { return t.count }

// Current returns the current value for the given stat.
func (t *Table[K]) Current(k K) float32 { return t.slots[uint8(k)].Current }

// Base returns the base value for the given stat.
func (t *Table[K]) Base(k K) float32 { return t.slots[uint8(k)].Base }

// ModifiedBase returns the persistent-layer value for the given stat.
func (t *Table[K]) ModifiedBase(k K) float32 { return t.slots[uint8(k)].ModifiedBase }

// Get returns a copy of the full slot.
func (t *Table[K]) Get(k K) Stat { return t.slots[uint8(k)] }

// SetBase overwrites the base value. The caller must recompute the stat
// afterwards (engine.SetBase does both).
func (t *Table[K]) SetBase(k K, v float32) { t.slots[uint8(k)].Base = v }

// At returns the addressable slot for the engine's recompute pass. External
// callers must not mutate Current through it.
func (t *Table[K]) At(k K) *Stat { return &t.slots[uint8(k)] }
