package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState builds an overlay from a session snapshot.
func OverlayFromState(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedNodes: state.History,
		CurrentNode:  state.CurrentNodeID,
	}
}

// Edge colours follow the editor canvas.
const (
	colorAlways = "#94a3b8"
	colorAnd    = "#22c55e"
	colorOr     = "#3b82f6"
)

// GenerateMermaid produces a Mermaid flowchart for a form.
// It applies semantic styling:
// - Start question: ([Stadium])
// - Choice questions: {Rhombus}
// - Other questions: [Rectangle]
// Edges are labelled with their condition summary and coloured by logical
// operator. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(form *domain.Form, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var startID string
	if start := flow.FindStartNode(form.Nodes, form.Edges, form.Settings); start != nil {
		startID = start.ID
	}

	for _, node := range form.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == startID:
			opener, closer = "([", "])"
		case node.Data.Type.HasOptions() || node.Data.Type == domain.QuestionBoolean:
			opener, closer = "{", "}"
		}

		label := escapeLabel(node.Data.Question)
		if node.Data.Required {
			label += " *"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s<br/><small>%s</small>\"%s\n", safeID, opener, label, node.Data.Type, closer)
	}

	for i, edge := range form.Edges {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(edge.Source), escapeLabel(EdgeLabel(edge)), sanitizeMermaidID(edge.Target))
		fmt.Fprintf(&sb, "    linkStyle %d stroke:%s\n", i, edgeColor(edge))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			if id == overlay.CurrentNode {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

// EdgeLabel summarises an edge's activation rule the way the editor canvas does.
func EdgeLabel(e domain.Edge) string {
	switch {
	case e.Data.CustomExpression != "":
		return "custom"
	case len(e.Data.Conditions) == 0:
		return "Always"
	case len(e.Data.Conditions) == 1:
		c := e.Data.Conditions[0]
		return fmt.Sprintf("%s %s", c.SourceVariable, c.Operator)
	}
	op := e.Data.LogicalOperator
	if op == "" {
		op = domain.LogicalAnd
	}
	return fmt.Sprintf("%d conditions (%s)", len(e.Data.Conditions), strings.ToUpper(string(op)))
}

func edgeColor(e domain.Edge) string {
	switch {
	case len(e.Data.Conditions) == 0 && e.Data.CustomExpression == "":
		return colorAlways
	case e.Data.LogicalOperator == domain.LogicalOr:
		return colorOr
	}
	return colorAnd
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
