package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/formflow/pkg/domain"
)

func lintForm() *domain.Form {
	name := validNode("1", "name")
	age := validNode("2", "age")
	age.Data.Type = domain.QuestionRating
	bye := validNode("3", "bye")

	return &domain.Form{
		ID:    "f1",
		Nodes: []domain.Node{name, age, bye},
		Edges: []domain.Edge{
			{ID: "e1", Source: "1", Target: "2", Data: domain.EdgeData{LogicalOperator: domain.LogicalAnd}},
			{ID: "e2", Source: "2", Target: "3", Data: domain.EdgeData{
				LogicalOperator: domain.LogicalAnd,
				Conditions: []domain.Condition{
					{SourceVariable: "age", Operator: domain.OpGreaterThan, Value: 18},
				},
			}},
		},
	}
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}

func TestLint_Clean(t *testing.T) {
	r := Lint(lintForm())
	assert.Empty(t, r.Issues, messages(r.Issues))
	assert.NoError(t, r.Err())
}

func TestLint_EmptyForm(t *testing.T) {
	r := Lint(&domain.Form{ID: "f"})
	assert.Len(t, r.Errors(), 1)
	assert.Error(t, r.Err())
}

func TestLint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Form)
		edgeID string
		nodeID string
	}{
		{
			name: "duplicate variable",
			mutate: func(f *domain.Form) {
				f.Nodes[2].Data.VariableName = "name"
			},
			nodeID: "3",
		},
		{
			name: "dangling edge",
			mutate: func(f *domain.Form) {
				f.Edges = append(f.Edges, domain.Edge{ID: "e3", Source: "3", Target: "ghost"})
			},
			edgeID: "e3",
		},
		{
			name: "loop",
			mutate: func(f *domain.Form) {
				f.Edges = append(f.Edges, domain.Edge{ID: "e3", Source: "3", Target: "1"})
			},
			edgeID: "e3",
		},
		{
			name: "parallel edge",
			mutate: func(f *domain.Form) {
				f.Edges = append(f.Edges, domain.Edge{ID: "e3", Source: "1", Target: "2"})
			},
			edgeID: "e3",
		},
		{
			name: "invalid node",
			mutate: func(f *domain.Form) {
				f.Nodes[0].Data.Question = ""
			},
			nodeID: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := lintForm()
			tt.mutate(f)
			errs := Lint(f).Errors()
			if assert.Len(t, errs, 1, messages(errs)) {
				assert.Equal(t, tt.edgeID, errs[0].EdgeID)
				assert.Equal(t, tt.nodeID, errs[0].NodeID)
			}
		})
	}
}

func TestLint_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Form)
		want   int
	}{
		{
			name: "unreachable question",
			mutate: func(f *domain.Form) {
				f.Nodes = append(f.Nodes, validNode("9", "orphan"))
			},
			want: 1,
		},
		{
			name: "unknown condition variable",
			mutate: func(f *domain.Form) {
				f.Edges[1].Data.Conditions[0].SourceVariable = "ghost"
			},
			want: 1,
		},
		{
			name: "operator not offered",
			mutate: func(f *domain.Form) {
				f.Edges[1].Data.Conditions[0].Operator = domain.OpContains
			},
			want: 1,
		},
		{
			name: "unknown comparison variable",
			mutate: func(f *domain.Form) {
				c := &f.Edges[1].Data.Conditions[0]
				c.Type = domain.TargetVariable
				c.Value = "ghost"
			},
			want: 1,
		},
		{
			name: "conditions and expression",
			mutate: func(f *domain.Form) {
				f.Edges[1].Data.CustomExpression = "age > 18"
			},
			want: 1,
		},
		{
			name: "expression with unknown variable",
			mutate: func(f *domain.Form) {
				f.Edges[0].Data.CustomExpression = "ghost == 1"
			},
			want: 1,
		},
		{
			name: "expression does not parse",
			mutate: func(f *domain.Form) {
				f.Edges[0].Data.CustomExpression = "name =="
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := lintForm()
			tt.mutate(f)
			r := Lint(f)
			assert.Empty(t, r.Errors(), messages(r.Errors()))
			assert.Len(t, r.Warnings(), tt.want, messages(r.Warnings()))
		})
	}
}
