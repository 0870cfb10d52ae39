package tension

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

const (
	// maxScenarios caps how many predictions become future points.
	maxScenarios = 2
	// minClaimLen filters out junk contradiction claims.
	minClaimLen = 6
	// presentFactDensity seeds the synthesized present point when a story
	// has no past events yet.
	presentFactDensity = 0.7
)

// SeriesBuilder aggregates events, contradictions, and predictions into a
// tension series. Every call builds a fresh result; the builder holds no
// per-story state.
type SeriesBuilder struct {
	scorer    *Scorer
	projector ScenarioScorer
	now       func() time.Time
}

// NewSeriesBuilder creates a builder. A nil projector gets the keyword
// projector with the scorer's defaults; a nil now uses the wall clock.
func NewSeriesBuilder(scorer *Scorer, projector ScenarioScorer, now func() time.Time) *SeriesBuilder {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	if projector == nil {
		projector = NewKeywordProjector(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &SeriesBuilder{scorer: scorer, projector: projector, now: now}
}

// Build produces the full series for a story: chronological past points with
// the last one flagged present, up to two future scenarios, and the filtered
// contradiction list. The series is never empty — with no events a single
// present point is synthesized from the narrative arc.
func (b *SeriesBuilder) Build(events []model.TimelineEvent, predictions []model.Prediction, contradictions []model.ContradictionItem, category, narrativeArc, currentTitle string) *model.SeriesResult {
	kept, byDay := b.filterContradictions(contradictions, currentTitle)

	sorted := make([]model.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var points []model.TensionPoint
	for i, ev := range sorted {
		point := model.TensionPoint{
			ID:      fmt.Sprintf("event-%d", i),
			Date:    ev.Date,
			Tension: b.scorer.Score(ev.Phase, category, ev.FactDensity),
			Phase:   ev.Phase,
		}
		if c, ok := byDay[dayKey(ev.Date)]; ok {
			point.HasContradiction = true
			point.Contradiction = c
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		arc := narrativeArc
		if arc == "" {
			arc = model.PhaseDeveloping
		}
		points = append(points, model.TensionPoint{
			ID:      "present",
			Date:    b.now(),
			Tension: b.scorer.Score(arc, category, presentFactDensity),
			Phase:   arc,
		})
	}
	points[len(points)-1].IsPresent = true
	presentDate := points[len(points)-1].Date

	scenarios := b.projectScenarios(predictions, category, presentDate)

	minTension, maxTension := 0, 100
	for _, p := range points {
		if p.Tension < minTension {
			minTension = p.Tension
		}
		if p.Tension > maxTension {
			maxTension = p.Tension
		}
	}
	for _, s := range scenarios {
		if s.Point.Tension < minTension {
			minTension = s.Point.Tension
		}
		if s.Point.Tension > maxTension {
			maxTension = s.Point.Tension
		}
	}

	return &model.SeriesResult{
		Points:         points,
		Scenarios:      scenarios,
		Contradictions: kept,
		MinTension:     minTension,
		MaxTension:     maxTension,
	}
}

// filterContradictions drops records whose claims are junk or self-referential
// and indexes the survivors by day.
func (b *SeriesBuilder) filterContradictions(items []model.ContradictionItem, currentTitle string) ([]model.ContradictionItem, map[string]*model.ContradictionItem) {
	kept := make([]model.ContradictionItem, 0, len(items))
	byDay := make(map[string]*model.ContradictionItem)
	for _, item := range items {
		if !validClaim(item.ClaimA, currentTitle) || !validClaim(item.ClaimB, currentTitle) {
			continue
		}
		kept = append(kept, item)
		key := dayKey(item.Date)
		if _, ok := byDay[key]; !ok {
			byDay[key] = &kept[len(kept)-1]
		}
	}
	return kept, byDay
}

// validClaim rejects empty claims, the "-" placeholder, very short claims,
// and claims that merely restate the story title.
func validClaim(claim, currentTitle string) bool {
	claim = strings.TrimSpace(claim)
	if claim == "" || claim == "-" || len(claim) < minClaimLen {
		return false
	}
	return claim != currentTitle
}

func (b *SeriesBuilder) projectScenarios(predictions []model.Prediction, category string, presentDate time.Time) []model.Scenario {
	ranked := make([]model.Prediction, len(predictions))
	copy(ranked, predictions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})
	if len(ranked) > maxScenarios {
		ranked = ranked[:maxScenarios]
	}

	scenarios := make([]model.Scenario, 0, len(ranked))
	for i, p := range ranked {
		tension := b.projector.Project(p, category)
		scenarios = append(scenarios, model.Scenario{
			Point: model.TensionPoint{
				ID:       fmt.Sprintf("future-%d", i),
				Date:     offsetByTimeframe(presentDate, p.Timeframe),
				Tension:  tension,
				Phase:    phaseForTension(tension),
				IsFuture: true,
			},
			Label:       p.Text,
			Probability: p.Probability,
			Rationale:   p.Rationale,
		})
	}
	return scenarios
}

// offsetByTimeframe places a future point relative to the present point:
// short term two weeks out, medium term a quarter, long term a year, and one
// month for anything unrecognized.
func offsetByTimeframe(from time.Time, timeframe string) time.Time {
	switch timeframe {
	case model.TimeframeShort:
		return from.AddDate(0, 0, 14)
	case model.TimeframeMedium:
		return from.AddDate(0, 3, 0)
	case model.TimeframeLong:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// phaseForTension infers a narrative phase from a projected tension value.
func phaseForTension(tension int) string {
	switch {
	case tension >= 70:
		return model.PhasePeak
	case tension >= 40:
		return model.PhaseDeveloping
	default:
		return model.PhaseResolved
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
