// Package snapshot holds the plain persistence shapes exchanged between the
// engine and the database layer. Only base values and persistent effects are
// captured: continuous and repeating contributions are consumed per tick and
// have nothing durable to restore.
package snapshot

import "github.com/google/uuid"

// Entity is one entity's durable state.
type Entity struct {
	ID      uint32
	Bases   []float32 // indexed by stat ordinal, one per declared ordinal
	Effects []Effect
}

// Effect is one active persistent effect. Applied is the magnitude recorded
// at add time; restoring replays it as a fixed magnitude, which keeps the
// reversal-on-removal guarantee intact across a round trip. Remaining is nil
// for effects with no expiry.
type Effect struct {
	Instance    uuid.UUID
	Identity    string
	Target      uint8
	Calculation uint8
	Applied     float32
	Remaining   *float32
}
