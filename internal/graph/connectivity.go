package graph

import "github.com/storypulse/storypulse/internal/model"

// Connectivity computes per-node degree and importance. Count is the number
// of edge endpoints referencing the node (same matching rule as Reconcile);
// importance is the count normalized against the most-connected node. With no
// edges every node gets a zero importance.
func Connectivity(nodes []model.CausalNode, edges []model.CausalEdge) map[string]model.Degree {
	counts := make(map[string]int, len(nodes))
	maxCount := 0
	for _, n := range nodes {
		count := 0
		for _, e := range edges {
			if Match(e.Cause, n.Label) {
				count++
			}
			if Match(e.Effect, n.Label) {
				count++
			}
		}
		counts[n.ID] = count
		if count > maxCount {
			maxCount = count
		}
	}

	divisor := maxCount
	if divisor < 1 {
		divisor = 1
	}

	result := make(map[string]model.Degree, len(nodes))
	for _, n := range nodes {
		count := counts[n.ID]
		result[n.ID] = model.Degree{
			Count:      count,
			Importance: float64(count) / float64(divisor),
		}
	}
	return result
}
