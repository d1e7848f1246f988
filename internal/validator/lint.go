package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/expression"
	"github.com/aretw0/formflow/pkg/flow"
)

// Severity ranks a lint finding.
type Severity string

const (
	// SeverityError marks a form that the editor would have refused to produce.
	SeverityError Severity = "error"
	// SeverityWarning marks a form that runs but probably not as intended.
	SeverityWarning Severity = "warning"
)

// Issue is one lint finding.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	EdgeID   string   `json:"edge_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var where string
	switch {
	case i.EdgeID != "":
		where = "edge " + i.EdgeID
	case i.NodeID != "":
		where = "node " + i.NodeID
	default:
		where = "form"
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, where, i.Message)
}

// Report holds every finding for one form.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, nodeID, edgeID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		NodeID:   nodeID,
		EdgeID:   edgeID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns the error-level findings.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-level findings.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err summarises error-level findings, or returns nil when there are none.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Lint inspects a whole form.
//
// Errors: no questions, invalid node or edge fields, duplicate variable
// names, edges touching missing nodes, parallel edges and edges that close a
// loop. Warnings: unreachable questions, conditions on unknown variables,
// operators not offered for the source question's type, expressions that do
// not parse or reference unknown variables, and edges carrying both
// conditions and an expression.
func Lint(form *domain.Form) Report {
	var r Report
	if len(form.Nodes) == 0 {
		r.add(SeverityError, "", "", "form has no questions")
		return r
	}

	nodeIDs := make(map[string]struct{}, len(form.Nodes))
	owners := make(map[string]string, len(form.Nodes))
	for _, n := range form.Nodes {
		if _, dup := nodeIDs[n.ID]; dup {
			r.add(SeverityError, n.ID, "", "duplicate node id")
		}
		nodeIDs[n.ID] = struct{}{}

		if err := ValidateNode(n); err != nil {
			r.add(SeverityError, n.ID, "", "%v", err)
		}
		if v := n.Data.VariableName; v != "" {
			if other, dup := owners[v]; dup {
				r.add(SeverityError, n.ID, "", "variable %q is already used by node %s", v, other)
			} else {
				owners[v] = n.ID
			}
		}
	}

	accepted := make([]domain.Edge, 0, len(form.Edges))
	pairs := make(map[[2]string]string, len(form.Edges))
	for _, e := range form.Edges {
		if err := ValidateEdge(e); err != nil {
			r.add(SeverityError, "", e.ID, "%v", err)
		}

		_, srcOK := nodeIDs[e.Source]
		_, dstOK := nodeIDs[e.Target]
		if !srcOK || !dstOK {
			r.add(SeverityError, "", e.ID, "connects %s -> %s but one of them does not exist", e.Source, e.Target)
		} else if other, dup := pairs[[2]string{e.Source, e.Target}]; dup {
			r.add(SeverityError, "", e.ID, "duplicates edge %s between %s and %s", other, e.Source, e.Target)
		} else if flow.WouldCreateCycle(form.Nodes, accepted, e) {
			r.add(SeverityError, "", e.ID, "closes a loop (%s -> %s)", e.Source, e.Target)
		} else {
			accepted = append(accepted, e)
			pairs[[2]string{e.Source, e.Target}] = e.ID
		}

		lintEdgeRules(&r, form, e)
	}

	for _, id := range unreachable(form, accepted) {
		r.add(SeverityWarning, id, "", "unreachable from the start question")
	}
	return r
}

func lintEdgeRules(r *Report, form *domain.Form, e domain.Edge) {
	if len(e.Data.Conditions) > 0 && e.Data.CustomExpression != "" {
		r.add(SeverityWarning, "", e.ID, "has both conditions and a custom expression; the expression wins")
	}

	if e.Data.CustomExpression != "" {
		vars, err := expression.Variables(e.Data.CustomExpression)
		if err != nil {
			r.add(SeverityWarning, "", e.ID, "custom expression never matches: %v", err)
		}
		for _, v := range vars {
			if _, ok := form.NodeByVariable(v); !ok {
				r.add(SeverityWarning, "", e.ID, "custom expression references unknown variable %q", v)
			}
		}
		return
	}

	for _, c := range e.Data.Conditions {
		source, ok := form.NodeByVariable(c.SourceVariable)
		if !ok {
			r.add(SeverityWarning, "", e.ID, "condition on unknown variable %q", c.SourceVariable)
			continue
		}
		if !domain.OperatorAllowed(source.Data.Type, c.Operator) {
			r.add(SeverityWarning, "", e.ID, "operator %s is not offered for %s questions", c.Operator, source.Data.Type)
		}
		if name, isName := c.Value.(string); c.Type == domain.TargetVariable && isName {
			if _, ok := form.NodeByVariable(name); !ok {
				r.add(SeverityWarning, "", e.ID, "condition compares against unknown variable %q", name)
			}
		}
	}
}

func unreachable(form *domain.Form, edges []domain.Edge) []string {
	start := flow.FindStartNode(form.Nodes, edges, form.Settings)
	if start == nil {
		return nil
	}

	next := make(map[string][]string, len(form.Nodes))
	for _, e := range edges {
		next[e.Source] = append(next[e.Source], e.Target)
	}

	seen := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, target := range next[current] {
			if !seen[target] {
				seen[target] = true
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for _, n := range form.Nodes {
		if !seen[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
