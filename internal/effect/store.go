package effect

import (
	"log/slog"

	"github.com/solrift/statfx/internal/stats"
)

// SoftCap is the pre-sized capacity of a store. It is a soft limit: adds
// beyond it succeed at the cost of a reallocation, never a rejection.
const SoftCap = 24

// Store is the bounded per-entity collection of active effect instances. It
// lives alongside the entity's stat table and must not exist without it.
// Entries keep insertion order; the engine relies on that for the
// last-set-value rule.
type Store[K stats.Kind] struct {
	effects []*Active[K]
}

// NewStore returns an empty store pre-sized to SoftCap.
func NewStore[K stats.Kind]() *Store[K] {
	return &Store[K]{effects: make([]*Active[K], 0, SoftCap)}
}

// Len returns the number of stored effects.
func (s *Store[K]) Len() int { return len(s.effects) }

// All returns the backing slice in insertion order. Callers must not add or
// remove entries while iterating it.
func (s *Store[K]) All() []*Active[K] { return s.effects }

// CountIdentity returns how many stored effects carry the given identity.
func (s *Store[K]) CountIdentity(identity string) int {
	n := 0
	for _, a := range s.effects {
		if a.Identity == identity {
			n++
		}
	}
	return n
}

// HasIdentity reports whether any stored effect carries the given identity.
func (s *Store[K]) HasIdentity(identity string) bool {
	return s.CountIdentity(identity) > 0
}

// Identities returns the distinct identities currently active, in first-seen
// order. Used by hosts to query marker effects.
func (s *Store[K]) Identities() []string {
	seen := make(map[string]struct{}, len(s.effects))
	out := make([]string, 0, len(s.effects))
	for _, a := range s.effects {
		if a.Identity == "" {
			continue
		}
		if _, ok := seen[a.Identity]; ok {
			continue
		}
		seen[a.Identity] = struct{}{}
		out = append(out, a.Identity)
	}
	return out
}

// Add inserts the instance subject to the stacking policy for its identity.
// It returns whether the instance was inserted and whether an existing
// instance's timer was rewound instead. Rejections are silent no-ops;
// callers emit no added notification for them.
func (s *Store[K]) Add(a *Active[K], p Policy) (added, reset bool) {
	switch p.Kind {
	case NoStacking:
		if s.HasIdentity(a.Identity) {
			return false, false
		}
	case NoStackingResetTimer:
		if s.HasIdentity(a.Identity) {
			return false, s.resetOldest(a.Identity, a.Duration.Timer)
		}
	case MultipleEffects:
		if s.CountIdentity(a.Identity) >= p.Max {
			return false, false
		}
	case MultipleEffectsResetTimer:
		if s.CountIdentity(a.Identity) >= p.Max {
			return false, s.resetOldest(a.Identity, a.Duration.Timer)
		}
	}

	if len(s.effects) >= SoftCap {
		slog.Debug("effect store above soft capacity",
			"len", len(s.effects),
			"identity", a.Identity)
	}
	s.effects = append(s.effects, a)
	return true, false
}

// resetOldest rewinds the expiry of the first stored effect with the given
// identity to the incoming timer's remaining seconds.
func (s *Store[K]) resetOldest(identity string, incoming *Countdown) bool {
	if incoming == nil {
		return false
	}
	for _, a := range s.effects {
		if a.Identity != identity {
			continue
		}
		if err := a.SetDuration(incoming.Remaining()); err != nil {
			continue
		}
		return true
	}
	return false
}

// Put appends an instance without consulting any stacking policy. Used when
// restoring persisted effects that were legitimately active when captured.
func (s *Store[K]) Put(a *Active[K]) {
	s.effects = append(s.effects, a)
}

// RemoveIdentity removes every effect with the given identity and returns
// them in insertion order.
func (s *Store[K]) RemoveIdentity(identity string) []*Active[K] {
	var removed []*Active[K]
	n := 0
	for _, a := range s.effects {
		if a.Identity == identity {
			removed = append(removed, a)
		} else {
			s.effects[n] = a
			n++
		}
	}
	clear(s.effects[n:])
	s.effects = s.effects[:n]
	return removed
}

// RemoveAt removes and returns the effect at index i, preserving order.
func (s *Store[K]) RemoveAt(i int) *Active[K] {
	a := s.effects[i]
	s.effects = append(s.effects[:i], s.effects[i+1:]...)
	return a
}
