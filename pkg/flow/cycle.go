package flow

import (
	"github.com/aretw0/formflow/pkg/domain"
)

// WouldCreateCycle reports whether adding candidate to the graph would make
// it cyclic. Only the candidate's Source and Target are read.
//
// It runs Kahn's elimination over the node set with every existing edge plus
// the candidate. Successors are kept as a set, so a second edge between the
// same pair of nodes leaves its target with an in-degree that never reaches
// zero and is reported as a cycle. Edges that reference nodes outside the set
// also make the counts disagree and are rejected the same way.
func WouldCreateCycle(nodes []domain.Node, edges []domain.Edge, candidate domain.Edge) bool {
	if candidate.Source == candidate.Target {
		return true
	}

	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string]map[string]struct{}, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = 0
		successors[n.ID] = make(map[string]struct{})
	}

	add := func(source, target string) {
		inDegree[target]++
		if next, ok := successors[source]; ok {
			next[target] = struct{}{}
		}
	}
	for _, e := range edges {
		add(e.Source, e.Target)
	}
	add(candidate.Source, candidate.Target)

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited++

		for next := range successors[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return visited != len(nodes)
}
