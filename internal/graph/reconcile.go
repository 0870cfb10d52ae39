// Package graph turns loosely-specified cause/effect relations into a
// renderable graph: endpoint reconciliation, connectivity, and two layout
// strategies (force-directed and hierarchical).
package graph

import (
	"github.com/google/uuid"

	"github.com/storypulse/storypulse/internal/model"
)

const (
	// matchPrefixLen bounds the fuzzy prefix comparison between edge text
	// and node labels.
	matchPrefixLen = 30
	// synthLabelLen bounds the label of a synthesized node.
	synthLabelLen = 80

	defaultFactDensity = 0.5
)

// nodeNamespace seeds deterministic IDs for synthesized nodes. Fixed so that
// repeated reconciliations of the same input produce the same IDs.
var nodeNamespace = uuid.MustParse("8f1c9a52-6c1e-4a7b-9a0e-2d94d1c3b7f4")

// Match reports whether an edge endpoint text resolves to a node label:
// exact equality, or a prefix match within the first 30 characters in either
// direction. The heuristic can merge distinct labels that share a long common
// prefix; a stable-identifier hand-off from the extraction provider would
// remove it.
func Match(text, label string) bool {
	if text == "" || label == "" {
		return text == label
	}
	if text == label {
		return true
	}
	t := truncate(text, matchPrefixLen)
	l := truncate(label, matchPrefixLen)
	if len(t) <= len(l) {
		return l[:len(t)] == t
	}
	return t[:len(l)] == l
}

// Reconcile guarantees every edge endpoint is resolvable to a node. Each edge
// needs two endpoint matches against the supplied node list; if the list
// yields fewer matches than that, it is discarded and one node is synthesized
// per unique endpoint text (truncated to 80 characters, deduplicated). The
// result is deterministic: identical input yields identical IDs in identical
// order.
func Reconcile(nodes []model.CausalNode, edges []model.CausalEdge) []model.CausalNode {
	if len(edges) == 0 {
		if len(nodes) == 0 {
			return []model.CausalNode{}
		}
		out := make([]model.CausalNode, len(nodes))
		copy(out, nodes)
		return out
	}

	required := 2 * len(edges)
	matched := 0
	for _, e := range edges {
		if findNode(nodes, e.Cause) >= 0 {
			matched++
		}
		if findNode(nodes, e.Effect) >= 0 {
			matched++
		}
	}
	if len(nodes) > 0 && matched >= required {
		out := make([]model.CausalNode, len(nodes))
		copy(out, nodes)
		return out
	}

	// Supplied nodes don't cover the edges; rebuild from the edge text.
	seen := make(map[string]struct{}, 2*len(edges))
	synthesized := make([]model.CausalNode, 0, 2*len(edges))
	for _, e := range edges {
		for _, text := range []string{e.Cause, e.Effect} {
			label := truncate(text, synthLabelLen)
			if label == "" {
				continue
			}
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}

			density := e.Confidence
			if density == 0 {
				density = defaultFactDensity
			}
			synthesized = append(synthesized, model.CausalNode{
				ID:          uuid.NewSHA1(nodeNamespace, []byte(label)).String(),
				Label:       label,
				Type:        model.NodeEvent,
				FactDensity: density,
			})
		}
	}
	return synthesized
}

// ReconcileGraph returns the effective nodes alongside the unchanged edges,
// with every edge endpoint resolvable in the returned node list.
func ReconcileGraph(nodes []model.CausalNode, edges []model.CausalEdge) ([]model.CausalNode, []model.CausalEdge) {
	return Reconcile(nodes, edges), edges
}

// findNode returns the index of the first node whose label matches the text,
// or -1.
func findNode(nodes []model.CausalNode, text string) int {
	for i, n := range nodes {
		if Match(text, n.Label) {
			return i
		}
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
