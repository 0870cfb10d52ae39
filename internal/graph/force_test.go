package graph

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/storypulse/storypulse/internal/model"
)

func TestForceEmpty(t *testing.T) {
	positions := Force(nil, nil, 800, 600, 50, nil)
	if len(positions) != 0 {
		t.Errorf("expected empty map for zero nodes, got %d", len(positions))
	}
}

func TestForceSingleNodeCentered(t *testing.T) {
	nodes := testNodes("lone event")
	positions := Force(nodes, nil, 800, 600, 50, nil)

	pos, ok := positions["lone event"]
	if !ok {
		t.Fatal("expected a position for the single node")
	}
	if pos.X != 400 || pos.Y != 300 {
		t.Errorf("expected centered position (400,300), got (%f,%f)", pos.X, pos.Y)
	}
}

func TestForcePositionsFiniteAndBounded(t *testing.T) {
	// Random-ish graph: 10 nodes, 15 edges.
	labels := make([]string, 10)
	for i := range labels {
		labels[i] = fmt.Sprintf("event %02d happens", i)
	}
	nodes := testNodes(labels...)

	rng := rand.New(rand.NewSource(42))
	var edges []model.CausalEdge
	for i := 0; i < 15; i++ {
		edges = append(edges, model.CausalEdge{
			Cause:      labels[rng.Intn(len(labels))],
			Effect:     labels[rng.Intn(len(labels))],
			Confidence: rng.Float64(),
		})
	}

	width, height := 800.0, 600.0
	positions := Force(nodes, edges, width, height, 100, rand.New(rand.NewSource(7)))

	if len(positions) != len(nodes) {
		t.Fatalf("expected %d positions, got %d", len(nodes), len(positions))
	}
	for id, pos := range positions {
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
			t.Fatalf("node %s: non-finite position (%f,%f)", id, pos.X, pos.Y)
		}
		if pos.X < 80 || pos.X > width-80 || pos.Y < 80 || pos.Y > height-80 {
			t.Errorf("node %s: position (%f,%f) outside canvas margins", id, pos.X, pos.Y)
		}
	}
}

func TestForceDeterministicWithSeededRNG(t *testing.T) {
	nodes := testNodes("first cause", "second cause", "third cause", "final effect")
	edges := []model.CausalEdge{
		{Cause: "first cause", Effect: "final effect", Confidence: 0.9},
		{Cause: "second cause", Effect: "final effect", Confidence: 0.7},
	}

	a := Force(nodes, edges, 640, 480, 60, rand.New(rand.NewSource(3)))
	b := Force(nodes, edges, 640, 480, 60, rand.New(rand.NewSource(3)))

	for id, pa := range a {
		pb := b[id]
		if pa != pb {
			t.Errorf("node %s: positions differ between identical seeded runs: %+v vs %+v", id, pa, pb)
		}
	}
}

func TestForceCoincidentNodesDoNotBlowUp(t *testing.T) {
	// Two nodes whose labels match each other would collapse onto the same
	// spot without the minimum-distance guard.
	nodes := []model.CausalNode{
		{ID: "a", Label: "same spot"},
		{ID: "b", Label: "same spot"},
	}
	positions := Force(nodes, nil, 400, 400, 30, rand.New(rand.NewSource(1)))
	for id, pos := range positions {
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
			t.Errorf("node %s: NaN position", id)
		}
	}
}
