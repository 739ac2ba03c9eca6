package event

// Kind discriminates notification types on the wire and in subscriber code.
type Kind string

const (
	KindEffectAdded        Kind = "effect_added"
	KindEffectRemoved      Kind = "effect_removed"
	KindRepeatingTriggered Kind = "repeating_triggered"
	KindBoundsBreached     Kind = "bounds_breached"
)

// RemovalReason says why an effect left the active set.
type RemovalReason string

const (
	// ReasonExplicit covers RemoveEffect requests and bulk removal.
	ReasonExplicit RemovalReason = "explicit"
	// ReasonExpired covers duration timers elapsing.
	ReasonExpired RemovalReason = "expired"
	// ReasonStaleSource covers non-local magnitudes whose remote entity no
	// longer exists.
	ReasonStaleSource RemovalReason = "stale_source"
)

// BoundKind says which clamp altered a stat.
type BoundKind string

const (
	BoundUpper BoundKind = "upper"
	BoundLower BoundKind = "lower"
)

// Event is a pure notification for external presentation systems. The engine
// never blocks on, retries, or depends on its consumption. Ordinal is the
// plain stat ordinal so the bus stays independent of the caller's stat kind
// type.
type Event struct {
	Kind     Kind          `json:"kind"`
	Entity   uint32        `json:"entity"`
	Identity string        `json:"identity,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Reason   RemovalReason `json:"reason,omitempty"`
	Ordinal  uint8         `json:"ordinal,omitempty"`
	Bound    BoundKind     `json:"bound,omitempty"`
}
