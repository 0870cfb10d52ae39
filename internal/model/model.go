// Package model holds the shared data model for story analysis. It carries no
// behavior; every analysis package consumes and produces these types.
package model

import "time"

// NodeType classifies a node in a cause-effect graph.
type NodeType string

const (
	NodeEntity   NodeType = "entity"
	NodeEvent    NodeType = "event"
	NodeDecision NodeType = "decision"
	NodeKeyword  NodeType = "keyword"
)

// RelationType classifies the relationship an edge expresses.
type RelationType string

const (
	RelationCauses   RelationType = "causes"
	RelationTriggers RelationType = "triggers"
	RelationEnables  RelationType = "enables"
	RelationPrevents RelationType = "prevents"
)

// Narrative phases of a story's lifecycle.
const (
	PhaseEmerging   = "emerging"
	PhaseDeveloping = "developing"
	PhasePeak       = "peak"
	PhaseDeclining  = "declining"
	PhaseResolved   = "resolved"
)

// Prediction timeframes.
const (
	TimeframeShort  = "short_term"
	TimeframeMedium = "medium_term"
	TimeframeLong   = "long_term"
)

// CausalNode is a node in a story's cause-effect graph.
type CausalNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        NodeType `json:"node_type"`
	FactDensity float64  `json:"fact_density"`
}

// CausalEdge is a loosely-specified relation between two pieces of free text.
// Cause and Effect are not guaranteed to equal any node label; resolution
// happens in the graph package.
type CausalEdge struct {
	Cause          string       `json:"cause_text"`
	Effect         string       `json:"effect_text"`
	Relation       RelationType `json:"relation_type"`
	Confidence     float64      `json:"confidence"`
	SourceArticles []string     `json:"source_articles,omitempty"`
}

// TimelineEvent is one historical event in a story's coverage.
type TimelineEvent struct {
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Phase       string    `json:"narrative_phase"`
	FactDensity float64   `json:"fact_density"`
	Sources     []string  `json:"sources,omitempty"`
	SynthesisID string    `json:"synthesis_id,omitempty"`
	Similarity  float64   `json:"similarity,omitempty"`
}

// ContradictionItem records two claims that conflict.
type ContradictionItem struct {
	Date    time.Time `json:"date"`
	Type    string    `json:"type"` // factual, temporal, sentiment
	ClaimA  string    `json:"claim_a"`
	ClaimB  string    `json:"claim_b"`
	SourceA string    `json:"source_a"`
	SourceB string    `json:"source_b"`
}

// Prediction is a probabilistic future scenario for a story.
type Prediction struct {
	Text        string  `json:"prediction"`
	Probability float64 `json:"probability"`
	Type        string  `json:"type,omitempty"`
	Timeframe   string  `json:"timeframe"`
	Rationale   string  `json:"rationale,omitempty"`
}

// TensionPoint is one point on a story's tension timeline. Tension is always
// an integer in [0,100]. At most one point in a series is the present point,
// and future points are never present.
type TensionPoint struct {
	ID               string             `json:"id"`
	Date             time.Time          `json:"date"`
	Tension          int                `json:"tension"`
	Phase            string             `json:"phase"`
	IsPresent        bool               `json:"isPresent"`
	IsFuture         bool               `json:"isFuture"`
	HasContradiction bool               `json:"hasContradiction"`
	Contradiction    *ContradictionItem `json:"contradiction,omitempty"`
}

// Scenario bundles a single projected future point with its prediction.
type Scenario struct {
	Point       TensionPoint `json:"point"`
	Label       string       `json:"label"`
	Probability float64      `json:"probability"`
	Rationale   string       `json:"rationale,omitempty"`
}

// SeriesResult is the full output of the temporal series builder. Points holds
// past and present points in chronological order; Scenarios holds up to two
// future projections. Min/MaxTension are the scale bounds for downstream
// normalization.
type SeriesResult struct {
	Points         []TensionPoint      `json:"points"`
	Scenarios      []Scenario          `json:"scenarios"`
	Contradictions []ContradictionItem `json:"contradictions"`
	MinTension     int                 `json:"minTension"`
	MaxTension     int                 `json:"maxTension"`
}

// Position is a 2D canvas position produced by a layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Degree holds per-node connectivity: raw endpoint count and importance
// normalized against the most-connected node.
type Degree struct {
	Count      int     `json:"count"`
	Importance float64 `json:"importance"`
}
