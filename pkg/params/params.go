// Package params holds the generation parameter panel model: the three
// numeric knobs, their safe bounds, and preset classification.
package params

import "math"

// Bounds and defaults enforced before any generation request.
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
	DefaultMaxTokens   = 512

	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 2048
)

// floatTolerance is the approximate-equality window used when matching
// knob values against a preset.
const floatTolerance = 1e-6

// Params are the generation knobs a client can turn.
type Params struct {
	Temperature float64 `json:"temperature" toml:"temperature"`
	TopP        float64 `json:"top_p" toml:"top_p"`
	MaxTokens   int     `json:"max_tokens" toml:"max_tokens"`
}

// Defaults returns the backend default knob values.
func Defaults() Params {
	return Params{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Clamp forces all knobs into their safe ranges and returns the result.
func (p Params) Clamp() Params {
	return Params{
		Temperature: clampFloat(p.Temperature, MinTemperature, MaxTemperature),
		TopP:        clampFloat(p.TopP, MinTopP, MaxTopP),
		MaxTokens:   clampInt(p.MaxTokens, MinMaxTokens, MaxMaxTokens),
	}
}

// Matches reports whether p equals other within tolerance: approximate
// equality on the float knobs, exact equality on max tokens.
func (p Params) Matches(other Params) bool {
	return math.Abs(p.Temperature-other.Temperature) < floatTolerance &&
		math.Abs(p.TopP-other.TopP) < floatTolerance &&
		p.MaxTokens == other.MaxTokens
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
