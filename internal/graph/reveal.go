package graph

// RevealState tracks how many confidence-ranked relations are disclosed and
// which node is active. It is an immutable value: transitions return a new
// state and never mutate the receiver. Revealed stays within
// [min(3, Total), Total].
type RevealState struct {
	Revealed   int
	Total      int
	ActiveNode string
}

// NewRevealState starts with the three most confident relations disclosed,
// or all of them when there are fewer than three.
func NewRevealState(totalEdges int) RevealState {
	if totalEdges < 0 {
		totalEdges = 0
	}
	return RevealState{Revealed: minInt(3, totalEdges), Total: totalEdges}
}

// Select activates a node and discloses the next-most-confident relation, if
// any remain hidden.
func (s RevealState) Select(nodeID string) RevealState {
	s.ActiveNode = nodeID
	if s.Revealed < s.Total {
		s.Revealed++
	}
	return s
}

// RevealAll discloses every relation.
func (s RevealState) RevealAll() RevealState {
	s.Revealed = s.Total
	return s
}

// Reset returns to the initial disclosure with no active node.
func (s RevealState) Reset() RevealState {
	return NewRevealState(s.Total)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
