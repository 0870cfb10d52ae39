package tension

import (
	"math"
	"strings"

	"github.com/storypulse/storypulse/internal/model"
)

// ScenarioScorer estimates the tension of a predicted future scenario. The
// interface exists so the keyword heuristic can later be swapped for a
// model-based estimator without touching the series builder.
type ScenarioScorer interface {
	Project(p model.Prediction, category string) int
}

// keywordAdjustment is one additive adjustment triggered by any of its terms
// appearing in the lower-cased prediction text. Adjustments are not mutually
// exclusive.
type keywordAdjustment struct {
	terms []string
	delta float64
}

var adjustments = []keywordAdjustment{
	{terms: []string{"crisis", "conflict", "war"}, delta: 20},
	{terms: []string{"escalation", "worsening"}, delta: 15},
	{terms: []string{"collapse", "downfall"}, delta: 15},
	{terms: []string{"agreement", "peace", "negotiation"}, delta: -15},
	{terms: []string{"resolution", "stabilization"}, delta: -20},
}

// KeywordProjector scores predictions with a fixed keyword bag. Deterministic
// and literal-string based; it performs no language understanding beyond
// substring containment.
type KeywordProjector struct {
	weights map[string]float64
}

// NewKeywordProjector creates a projector with the given category weights;
// nil means the built-in defaults.
func NewKeywordProjector(weights map[string]float64) *KeywordProjector {
	if weights == nil {
		weights = DefaultCategoryWeights
	}
	return &KeywordProjector{weights: weights}
}

// Project returns round((base + adjustments) * weight(category)) clamped to
// [10,100], where base is 60 for probability >= 0.5 and 40 below.
func (kp *KeywordProjector) Project(p model.Prediction, category string) int {
	base := 40.0
	if p.Probability >= 0.5 {
		base = 60.0
	}

	text := strings.ToLower(p.Text)
	for _, adj := range adjustments {
		for _, term := range adj.terms {
			if strings.Contains(text, term) {
				base += adj.delta
				break
			}
		}
	}

	weight, ok := kp.weights[category]
	if !ok {
		weight = DefaultCategoryWeight
	}
	return clampTension(math.Round(base*weight), 10, 100)
}
