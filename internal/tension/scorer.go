// Package tension builds a story's tension timeline: a bounded integer series
// over past events, a synthesized present point, and projected future
// scenarios.
package tension

import (
	"math"

	"github.com/storypulse/storypulse/internal/model"
)

// phaseBase maps each narrative phase to its base tension. Unknown phases
// fall back to developing.
var phaseBase = map[string]float64{
	model.PhaseEmerging:   25,
	model.PhaseDeveloping: 50,
	model.PhasePeak:       90,
	model.PhaseDeclining:  60,
	model.PhaseResolved:   20,
}

// DefaultCategoryWeight applies to topic categories without an explicit
// weight.
const DefaultCategoryWeight = 0.6

// DefaultCategoryWeights are the built-in topic weights. A config can
// override or extend them.
var DefaultCategoryWeights = map[string]float64{
	"politics":      1.0,
	"conflict":      1.1,
	"economy":       0.9,
	"society":       0.8,
	"technology":    0.7,
	"science":       0.7,
	"culture":       0.5,
	"sports":        0.4,
	"entertainment": 0.4,
}

// Scorer computes a tension value from narrative phase, topic category, and
// fact density.
type Scorer struct {
	weights map[string]float64
}

// NewScorer creates a scorer with the given category weights; nil means the
// built-in defaults.
func NewScorer(weights map[string]float64) *Scorer {
	if weights == nil {
		weights = DefaultCategoryWeights
	}
	return &Scorer{weights: weights}
}

// Score returns round(base(phase) * weight(category) * clamp(density, 0.1, 1))
// as an integer clamped to [0,100].
func (s *Scorer) Score(phase, category string, factDensity float64) int {
	base, ok := phaseBase[phase]
	if !ok {
		base = phaseBase[model.PhaseDeveloping]
	}
	return clampTension(math.Round(base*s.weight(category)*clampDensity(factDensity)), 0, 100)
}

func (s *Scorer) weight(category string) float64 {
	if w, ok := s.weights[category]; ok {
		return w
	}
	return DefaultCategoryWeight
}

func clampDensity(d float64) float64 {
	if d < 0.1 {
		return 0.1
	}
	if d > 1.0 {
		return 1.0
	}
	return d
}

func clampTension(v float64, lo, hi int) int {
	n := int(v)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
