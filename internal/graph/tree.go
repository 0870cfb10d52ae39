package graph

import (
	"sort"

	"github.com/storypulse/storypulse/internal/model"
)

const (
	treeWidth       = 960.0
	treeBaseOffset  = 80.0
	treeLevelHeight = 140.0
)

// TreeResult holds hierarchical positions and the BFS level of each node.
type TreeResult struct {
	Positions map[string]model.Position
	Levels    map[string]int
}

// SortEdgesByConfidence returns the edges in descending confidence order.
// The sort is stable: ties keep their original order. This ordering also
// drives the incremental reveal state.
func SortEdgesByConfidence(edges []model.CausalEdge) []model.CausalEdge {
	sorted := make([]model.CausalEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return sorted
}

// Tree lays nodes out hierarchically: roots (nodes with no incoming edge) at
// level 0, then breadth-first from all roots, each node taking the level of
// its first visit. The visited set guarantees termination on cyclic input; a
// cyclic pair each receives one finite level, whichever is reached first.
// Nodes never reached are bucketed one level below everything else.
func Tree(nodes []model.CausalNode, edges []model.CausalEdge) TreeResult {
	result := TreeResult{
		Positions: make(map[string]model.Position, len(nodes)),
		Levels:    make(map[string]int, len(nodes)),
	}
	if len(nodes) == 0 {
		return result
	}

	sorted := SortEdgesByConfidence(edges)

	children := make(map[string][]string)
	incoming := make(map[string]int, len(nodes))
	for _, e := range sorted {
		from := findNode(nodes, e.Cause)
		to := findNode(nodes, e.Effect)
		if from < 0 || to < 0 || from == to {
			continue
		}
		fromID := nodes[from].ID
		toID := nodes[to].ID
		children[fromID] = append(children[fromID], toID)
		incoming[toID]++
	}

	// All roots seed the traversal at level 0.
	visited := make(map[string]bool, len(nodes))
	var queue []string
	for _, n := range nodes {
		if incoming[n.ID] == 0 {
			result.Levels[n.ID] = 0
			visited[n.ID] = true
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			result.Levels[child] = result.Levels[id] + 1
			queue = append(queue, child)
		}
	}

	// Fully disconnected nodes (e.g. every node inside a cycle reachable
	// from no root) go one level below everything placed so far.
	maxLevel := 0
	for _, level := range result.Levels {
		if level > maxLevel {
			maxLevel = level
		}
	}
	for _, n := range nodes {
		if !visited[n.ID] {
			result.Levels[n.ID] = maxLevel + 1
		}
	}

	// Evenly space nodes within each level, preserving node order.
	byLevel := make(map[int][]string)
	for _, n := range nodes {
		level := result.Levels[n.ID]
		byLevel[level] = append(byLevel[level], n.ID)
	}
	for level, ids := range byLevel {
		for i, id := range ids {
			result.Positions[id] = model.Position{
				X: treeWidth / float64(len(ids)+1) * float64(i+1),
				Y: treeBaseOffset + float64(level)*treeLevelHeight,
			}
		}
	}

	return result
}
