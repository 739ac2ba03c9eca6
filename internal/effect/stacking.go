package effect

import "fmt"

// PolicyKind enumerates the stacking rules.
type PolicyKind uint8

const (
	// NoStacking rejects a second instance of the same identity.
	NoStacking PolicyKind = iota
	// NoStackingResetTimer rewinds the existing instance's expiry instead
	// of adding a second one.
	NoStackingResetTimer
	// MultipleEffects allows up to Max independent instances.
	MultipleEffects
	// MultipleEffectsResetTimer allows up to Max instances; at the cap it
	// rewinds the oldest matching instance's expiry instead of rejecting.
	MultipleEffectsResetTimer
)

// Policy is the stacking rule for one effect identity.
type Policy struct {
	Kind PolicyKind
	Max  int
}

// ParsePolicy maps a config policy name and cap to a Policy.
func ParsePolicy(name string, max int) (Policy, error) {
	switch name {
	case "no_stacking":
		return Policy{Kind: NoStacking}, nil
	case "no_stacking_reset_timer":
		return Policy{Kind: NoStackingResetTimer}, nil
	case "multiple_effects":
		if max < 1 {
			return Policy{}, fmt.Errorf("policy %q needs max >= 1, got %d", name, max)
		}
		return Policy{Kind: MultipleEffects, Max: max}, nil
	case "multiple_effects_reset_timer":
		if max < 1 {
			return Policy{}, fmt.Errorf("policy %q needs max >= 1, got %d", name, max)
		}
		return Policy{Kind: MultipleEffectsResetTimer, Max: max}, nil
	}
	return Policy{}, fmt.Errorf("unknown stacking policy %q", name)
}

// PolicyTable maps effect identities to stacking rules. It is built once at
// startup and read-only afterwards; unlisted identities default to
// NoStacking.
type PolicyTable struct {
	rules map[string]Policy
}

// NewPolicyTable returns an empty table.
func NewPolicyTable() *PolicyTable {
	return &PolicyTable{rules: make(map[string]Policy)}
}

// Stack registers a rule for an identity and returns the table for chaining.
func (t *PolicyTable) Stack(identity string, p Policy) *PolicyTable {
	t.rules[identity] = p
	return t
}

// Lookup returns the rule for an identity, defaulting to NoStacking.
func (t *PolicyTable) Lookup(identity string) Policy {
	if p, ok := t.rules[identity]; ok {
		return p
	}
	return Policy{Kind: NoStacking}
}

// Len returns the number of registered rules.
func (t *PolicyTable) Len() int { return len(t.rules) }
