package graph

import (
	"math"
	"math/rand"

	"github.com/storypulse/storypulse/internal/model"
)

const (
	// canvasMargin keeps nodes away from the canvas border.
	canvasMargin = 80
	// coolingFactor shrinks the temperature each iteration.
	coolingFactor = 0.95
	// jitterSpread perturbs the initial circle placement so coincident
	// nodes don't lock up the simulation.
	jitterSpread = 20.0
)

// Force places nodes with a spring-model simulation: all pairs repel with
// k²/d, connected pairs attract with d²/k, and per-iteration displacement is
// capped by a cooling temperature. The rng drives the initial jitter; pass a
// seeded one for reproducible layouts, or nil for a fixed default seed.
//
// Cost is O(n² · iterations). Intended for graphs of tens of nodes, not
// thousands.
func Force(nodes []model.CausalNode, edges []model.CausalEdge, width, height float64, iterations int, rng *rand.Rand) map[string]model.Position {
	positions := make(map[string]model.Position, len(nodes))
	n := len(nodes)
	if n == 0 {
		return positions
	}
	if n == 1 {
		positions[nodes[0].ID] = model.Position{X: width / 2, Y: height / 2}
		return positions
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	// Even placement around a circle, with jitter.
	radius := math.Min(width, height) * 0.3
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = width/2 + radius*math.Cos(angle) + (rng.Float64()-0.5)*jitterSpread
		ys[i] = height/2 + radius*math.Sin(angle) + (rng.Float64()-0.5)*jitterSpread
	}

	// Resolve edges to node index pairs once.
	type link struct{ a, b int }
	var links []link
	for _, e := range edges {
		a := findNode(nodes, e.Cause)
		b := findNode(nodes, e.Effect)
		if a >= 0 && b >= 0 && a != b {
			links = append(links, link{a, b})
		}
	}

	k := math.Sqrt(width*height/float64(n)) * 0.5
	temperature := width / 10

	dx := make([]float64, n)
	dy := make([]float64, n)
	for iter := 0; iter < iterations; iter++ {
		for i := range dx {
			dx[i] = 0
			dy[i] = 0
		}

		// Repulsion between every pair.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx := xs[i] - xs[j]
				ddy := ys[i] - ys[j]
				dist := math.Max(1, math.Hypot(ddx, ddy))
				force := k * k / dist
				dx[i] += ddx / dist * force
				dy[i] += ddy / dist * force
				dx[j] -= ddx / dist * force
				dy[j] -= ddy / dist * force
			}
		}

		// Attraction along edges.
		for _, l := range links {
			ddx := xs[l.a] - xs[l.b]
			ddy := ys[l.a] - ys[l.b]
			dist := math.Max(1, math.Hypot(ddx, ddy))
			force := dist * dist / k
			dx[l.a] -= ddx / dist * force
			dy[l.a] -= ddy / dist * force
			dx[l.b] += ddx / dist * force
			dy[l.b] += ddy / dist * force
		}

		// Move, capped by the current temperature.
		for i := 0; i < n; i++ {
			disp := math.Max(1, math.Hypot(dx[i], dy[i]))
			limited := math.Min(disp, temperature)
			xs[i] += dx[i] / disp * limited
			ys[i] += dy[i] / disp * limited
			xs[i] = clampRange(xs[i], canvasMargin, width-canvasMargin)
			ys[i] = clampRange(ys[i], canvasMargin, height-canvasMargin)
		}

		temperature *= coolingFactor
	}

	for i, node := range nodes {
		positions[node.ID] = model.Position{X: xs[i], Y: ys[i]}
	}
	return positions
}

func clampRange(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
