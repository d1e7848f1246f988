package editor_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/editor"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newEditor() *editor.Editor {
	n := 0
	return editor.New(
		editor.WithClock(func() time.Time { return fixedNow }),
		editor.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("n%d", n)
		}),
	)
}

func TestNewForm(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("")

	assert.Equal(t, "form_n10000000", f.ID)
	require.Len(t, f.Nodes, 1)
	first := f.Nodes[0]
	assert.Equal(t, "What's your name?", first.Data.Question)
	assert.Equal(t, "user_name", first.Data.VariableName)
	assert.True(t, first.Data.Required)
	assert.Equal(t, domain.Position{X: 250, Y: 100}, first.Position)
	assert.Empty(t, f.Edges)

	assert.Equal(t, first.ID, f.Settings.StartNodeID)
	assert.Equal(t, editor.DefaultFormName, f.Settings.FormName)
	assert.Equal(t, "#3b82f6", f.Settings.PrimaryColor)
	assert.True(t, f.Settings.ShowBranding)
	assert.False(t, f.Settings.IsPublished)
	assert.NoError(t, validator.Lint(f).Err())
}

func TestAddNode(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")

	text, err := ed.AddNode(f, domain.QuestionText)
	require.NoError(t, err)
	assert.Equal(t, 250.0, text.Position.X)
	assert.Equal(t, 250.0, text.Position.Y)
	assert.Equal(t, editor.DefaultQuestion, text.Data.Question)
	assert.False(t, text.Data.Required)
	assert.Regexp(t, `^question_1714557600000_[a-z0-9]{9}$`, text.Data.VariableName)
	assert.Nil(t, text.Data.Options)

	choice, err := ed.AddNode(f, domain.QuestionDropdown)
	require.NoError(t, err)
	assert.Equal(t, 400.0, choice.Position.Y)
	assert.Equal(t, []string{"Option 1", "Option 2"}, choice.Data.Options)
	assert.NotEqual(t, text.Data.VariableName, choice.Data.VariableName)

	// New nodes are roots, but the first root still wins.
	assert.Equal(t, f.Nodes[0].ID, f.Settings.StartNodeID)

	_, err = ed.AddNode(f, "matrix")
	assert.Error(t, err)
	assert.Len(t, f.Nodes, 3)

	t.Run("empty form", func(t *testing.T) {
		empty := &domain.Form{ID: "e"}
		n, err := ed.AddNode(empty, domain.QuestionBoolean)
		require.NoError(t, err)
		assert.Equal(t, 100.0, n.Position.Y)
		assert.Equal(t, n.ID, empty.Settings.StartNodeID)
	})
}

func TestDuplicateNode(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")
	orig := f.Nodes[0]

	dup, err := ed.DuplicateNode(f, orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.NotEqual(t, orig.Data.VariableName, dup.Data.VariableName)
	assert.Equal(t, orig.Data.Question, dup.Data.Question)
	assert.Equal(t, domain.Position{X: 300, Y: 150}, dup.Position)

	_, err = ed.DuplicateNode(f, "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestUpdateNode(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")
	second, err := ed.AddNode(f, domain.QuestionMultipleChoice)
	require.NoError(t, err)

	t.Run("merge", func(t *testing.T) {
		n, err := ed.UpdateNode(f, second.ID, map[string]any{
			"question":     "Favourite colour, [user_name]?",
			"variableName": "colour",
			"required":     true,
			"options":      []any{"Red", "Blue", "Green"},
		})
		require.NoError(t, err)
		assert.Equal(t, "colour", n.Data.VariableName)
		assert.True(t, n.Data.Required)
		assert.Equal(t, []string{"Red", "Blue", "Green"}, n.Data.Options)
		assert.Equal(t, domain.QuestionMultipleChoice, n.Data.Type)

		stored, _ := f.NodeByID(second.ID)
		assert.Equal(t, "colour", stored.Data.VariableName)
	})

	t.Run("options shrink", func(t *testing.T) {
		n, err := ed.UpdateNode(f, second.ID, map[string]any{"options": []any{"Only"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Only"}, n.Data.Options)
	})

	rejected := []struct {
		name  string
		patch map[string]any
		is    error
	}{
		{name: "duplicate variable", patch: map[string]any{"variableName": "user_name"}, is: domain.ErrDuplicateVariable},
		{name: "invalid variable", patch: map[string]any{"variableName": "9lives"}},
		{name: "blank question", patch: map[string]any{"question": ""}},
		{name: "unknown key", patch: map[string]any{"colour": "red"}, is: domain.ErrInvalidPatch},
		{name: "wrong kind", patch: map[string]any{"required": "yes"}, is: domain.ErrInvalidPatch},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			before := f.Clone()
			_, err := ed.UpdateNode(f, second.ID, tt.patch)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Equal(t, before.Nodes, f.Nodes)
		})
	}

	t.Run("field errors", func(t *testing.T) {
		_, err := ed.UpdateNode(f, second.ID, map[string]any{"variableName": "9lives"})
		var errs validator.Errors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, "variableName", errs[0].Field)
	})

	_, err = ed.UpdateNode(f, "ghost", map[string]any{"question": "x"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestMoveNode(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")
	id := f.Nodes[0].ID

	require.NoError(t, ed.MoveNode(f, id, domain.Position{X: 10, Y: 20}))
	assert.Equal(t, domain.Position{X: 10, Y: 20}, f.Nodes[0].Position)
	assert.Error(t, ed.MoveNode(f, id, domain.Position{X: 50000}))
	assert.Equal(t, domain.Position{X: 10, Y: 20}, f.Nodes[0].Position)
}

// chain builds name -> age -> bye.
func chain(t *testing.T, ed *editor.Editor) (*domain.Form, []domain.Node, []domain.Edge) {
	t.Helper()
	f := ed.NewForm("f1")
	age, err := ed.AddNode(f, domain.QuestionRating)
	require.NoError(t, err)
	_, err = ed.UpdateNode(f, age.ID, map[string]any{"variableName": "age"})
	require.NoError(t, err)
	bye, err := ed.AddNode(f, domain.QuestionText)
	require.NoError(t, err)

	e1, err := ed.Connect(f, f.Nodes[0].ID, age.ID)
	require.NoError(t, err)
	e2, err := ed.Connect(f, age.ID, bye.ID)
	require.NoError(t, err)
	return f, f.Nodes, []domain.Edge{e1, e2}
}

func TestConnect(t *testing.T) {
	ed := newEditor()
	f, nodes, edges := chain(t, ed)

	assert.Equal(t, []domain.Condition{}, edges[0].Data.Conditions)
	assert.Equal(t, domain.LogicalAnd, edges[0].Data.LogicalOperator)
	assert.Equal(t, nodes[0].ID, f.Settings.StartNodeID)

	tests := []struct {
		name           string
		source, target string
		is             error
	}{
		{name: "back edge", source: nodes[2].ID, target: nodes[0].ID, is: domain.ErrCycle},
		{name: "self loop", source: nodes[1].ID, target: nodes[1].ID, is: domain.ErrCycle},
		{name: "parallel", source: nodes[0].ID, target: nodes[1].ID, is: domain.ErrDuplicateEdge},
		{name: "missing target", source: nodes[0].ID, target: "ghost", is: domain.ErrNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ed.Connect(f, tt.source, tt.target)
			assert.ErrorIs(t, err, tt.is)
			assert.Len(t, f.Edges, 2)
		})
	}

	t.Run("skip edge is allowed", func(t *testing.T) {
		_, err := ed.Connect(f, nodes[0].ID, nodes[2].ID)
		require.NoError(t, err)
		assert.Len(t, f.Edges, 3)
	})
}

func TestStartRecomputed(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")
	first := f.Nodes[0].ID
	other, err := ed.AddNode(f, domain.QuestionText)
	require.NoError(t, err)

	_, err = ed.Connect(f, other.ID, first)
	require.NoError(t, err)
	assert.Equal(t, other.ID, f.Settings.StartNodeID)

	require.NoError(t, ed.DeleteNode(f, other.ID))
	assert.Equal(t, first, f.Settings.StartNodeID)

	require.NoError(t, ed.DeleteNode(f, first))
	assert.Empty(t, f.Settings.StartNodeID)
}

func TestDeleteNodeCascades(t *testing.T) {
	ed := newEditor()
	f, nodes, _ := chain(t, ed)

	require.NoError(t, ed.DeleteNode(f, nodes[1].ID))
	assert.Len(t, f.Nodes, 2)
	assert.Empty(t, f.Edges)
	assert.ErrorIs(t, ed.DeleteNode(f, nodes[1].ID), domain.ErrNodeNotFound)
}

func TestUpdateEdge(t *testing.T) {
	ed := newEditor()
	f, _, edges := chain(t, ed)
	id := edges[1].ID

	edge, err := ed.UpdateEdge(f, id, map[string]any{
		"conditions": []any{
			map[string]any{"sourceVariable": "age", "operator": "greaterThanOrEqual", "value": 18.0},
		},
		"logicalOperator": "or",
	})
	require.NoError(t, err)
	require.Len(t, edge.Data.Conditions, 1)
	assert.Equal(t, domain.OpGreaterThanOrEqual, edge.Data.Conditions[0].Operator)
	assert.Equal(t, 18.0, edge.Data.Conditions[0].Value)
	assert.Equal(t, domain.LogicalOr, edge.Data.LogicalOperator)

	edge, err = ed.UpdateEdge(f, id, map[string]any{"customExpression": "age >= 21"})
	require.NoError(t, err)
	assert.Len(t, edge.Data.Conditions, 1, "untouched keys survive")
	assert.Equal(t, "age >= 21", edge.Data.CustomExpression)

	edge, err = ed.UpdateEdge(f, id, map[string]any{"conditions": nil, "logicalOperator": ""})
	require.NoError(t, err)
	assert.Equal(t, []domain.Condition{}, edge.Data.Conditions)
	assert.Equal(t, domain.LogicalAnd, edge.Data.LogicalOperator)

	_, err = ed.UpdateEdge(f, id, map[string]any{"logicalOperator": "xor"})
	assert.Error(t, err)
	_, err = ed.UpdateEdge(f, "ghost", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrEdgeNotFound)
}

func TestDeleteEdge(t *testing.T) {
	ed := newEditor()
	f, nodes, edges := chain(t, ed)

	require.NoError(t, ed.DeleteEdge(f, edges[0].ID))
	assert.Len(t, f.Edges, 1)
	assert.Equal(t, nodes[0].ID, f.Settings.StartNodeID)
	assert.ErrorIs(t, ed.DeleteEdge(f, edges[0].ID), domain.ErrEdgeNotFound)
}

func TestPreviewEdge(t *testing.T) {
	ed := newEditor()
	f, _, edges := chain(t, ed)
	id := edges[1].ID
	_, err := ed.UpdateEdge(f, id, map[string]any{
		"conditions": []any{
			map[string]any{"sourceVariable": "age", "operator": "greaterThan", "value": "17"},
		},
	})
	require.NoError(t, err)

	ok, err := ed.PreviewEdge(f, id, domain.Answers{"age": 30})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ed.PreviewEdge(f, id, domain.Answers{"age": "9"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ed.PreviewEdge(f, edges[0].ID, nil)
	require.NoError(t, err)
	assert.True(t, ok, "unconditional edges are always active")
}

func TestUpdateSettings(t *testing.T) {
	ed := newEditor()
	f := ed.NewForm("f1")

	s, err := ed.UpdateSettings(f, map[string]any{"formName": "Onboarding", "isPublished": true, "formId": "hijack"})
	require.NoError(t, err)
	assert.Equal(t, "f1", s.FormID)
	assert.Equal(t, "Onboarding", f.Name)
	assert.True(t, f.Settings.IsPublished)

	_, err = ed.UpdateSettings(f, map[string]any{"startNodeId": "ghost"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Equal(t, "Onboarding", f.Settings.FormName)
}
