package stats

import "math"

// ScalingParams is a pure transform from a raw stat reading to a derived
// magnitude:
//
//	out = clamp(Shift + Multiplier*(raw-StatOffset)^Exponent, Min, Max)
//
// Min and Max are optional. A fractional Exponent applied to a negative
// shifted base produces NaN; that is the caller's responsibility and is not
// guarded here.
type ScalingParams struct {
	Shift      float32
	StatOffset float32
	Multiplier float32
	Exponent   float32
	Min        *float32
	Max        *float32
}

// DefaultScaling returns the identity transform.
func DefaultScaling() ScalingParams {
	return ScalingParams{Multiplier: 1, Exponent: 1}
}

// Apply maps a raw stat reading through the transform.
func (p ScalingParams) Apply(raw float32) float32 {
	shifted := raw - p.StatOffset
	if p.Exponent != 1 {
		shifted = float32(math.Pow(float64(shifted), float64(p.Exponent)))
	}
	out := p.Shift + p.Multiplier*shifted
	if p.Min != nil && out < *p.Min {
		out = *p.Min
	}
	if p.Max != nil && out > *p.Max {
		out = *p.Max
	}
	return out
}

// ClampMin returns a copy with the lower clamp set.
func (p ScalingParams) ClampMin(min float32) ScalingParams {
	p.Min = &min
	return p
}

// ClampMax returns a copy with the upper clamp set.
func (p ScalingParams) ClampMax(max float32) ScalingParams {
	p.Max = &max
	return p
}
