package flow

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// FindStartNode selects the entry question of a form.
//
// Candidates are the nodes without incoming edges. The configured start id
// wins when it is one of them. Otherwise candidates are ordered by numeric id
// when both ids start with an integer ("12a" reads as 12), else by vertical
// position, and the first is
// taken. When every node has an incoming edge the first node in the list is
// used. Returns nil for an empty node list.
func FindStartNode(nodes []domain.Node, edges []domain.Edge, settings domain.Settings) *domain.Node {
	if len(nodes) == 0 {
		return nil
	}

	targeted := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		targeted[e.Target] = struct{}{}
	}

	candidates := make([]int, 0, len(nodes))
	for i, n := range nodes {
		if _, ok := targeted[n.ID]; ok {
			continue
		}
		if settings.StartNodeID != "" && n.ID == settings.StartNodeID {
			return &nodes[i]
		}
		candidates = append(candidates, i)
	}

	if len(candidates) == 0 {
		return &nodes[0]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := nodes[candidates[i]], nodes[candidates[j]]
		an, aOK := leadingInt(a.ID)
		bn, bOK := leadingInt(b.ID)
		if aOK && bOK {
			return an < bn
		}
		return a.Position.Y < b.Position.Y
	})
	return &nodes[candidates[0]]
}

// leadingInt reads the integer at the start of s, after optional whitespace
// and sign. Trailing text is ignored.
func leadingInt(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	return n, err == nil
}
