package runtime_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/internal/runtime"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

func question(id, variable, text string, t domain.QuestionType) domain.Node {
	return domain.Node{
		ID: id,
		Data: domain.NodeData{
			Question:     text,
			Type:         t,
			VariableName: variable,
		},
	}
}

// surveyForm: name -> age, then age >= 18 goes to "adult", otherwise "minor".
func surveyForm() *domain.Form {
	name := question("1", "name", "What's your name?", domain.QuestionText)
	name.Data.Required = true
	return &domain.Form{
		ID:   "survey",
		Name: "Survey",
		Nodes: []domain.Node{
			name,
			question("2", "age", "How old are you, [name]?", domain.QuestionRating),
			question("3", "adult", "Do you drive?", domain.QuestionBoolean),
			question("4", "minor", "Which school?", domain.QuestionText),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "1", Target: "2"},
			{ID: "e2", Source: "2", Target: "3", Data: domain.EdgeData{
				LogicalOperator: domain.LogicalAnd,
				Conditions: []domain.Condition{
					{SourceVariable: "age", Operator: domain.OpGreaterThanOrEqual, Value: 18},
				},
			}},
			{ID: "e3", Source: "2", Target: "4"},
		},
	}
}

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	return runtime.NewEngine(memory.NewFormStore(surveyForm()), opts...)
}

func TestEngine_StartAtRoot(t *testing.T) {
	engine := newEngine(t)
	state, err := engine.Start(context.Background(), "survey", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", state.SessionID)
	assert.Equal(t, "survey", state.FormID)
	assert.Equal(t, "1", state.CurrentNodeID)
	assert.Equal(t, []string{"1"}, state.History)
	assert.Equal(t, domain.StatusActive, state.Status)
}

func TestEngine_StartGeneratesSessionID(t *testing.T) {
	state, err := newEngine(t).Start(context.Background(), "survey", "")
	require.NoError(t, err)
	assert.NotEmpty(t, state.SessionID)
}

func TestEngine_StartErrors(t *testing.T) {
	ctx := context.Background()
	_, err := newEngine(t).Start(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrFormNotFound)

	empty := runtime.NewEngine(memory.NewFormStore(&domain.Form{ID: "empty"}))
	_, err = empty.Start(ctx, "empty", "")
	assert.ErrorIs(t, err, domain.ErrEmptyForm)
}

func TestEngine_Branching(t *testing.T) {
	tests := []struct {
		name    string
		age     any
		wantEnd string
	}{
		{"adult numeric", 30, "3"},
		{"adult from text", "18", "3"},
		{"minor", 12, "4"},
		{"unparseable age falls through", "old", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine := newEngine(t)
			state, err := engine.Start(ctx, "survey", "s")
			require.NoError(t, err)

			state, err = engine.Submit(ctx, state, "Ada")
			require.NoError(t, err)
			require.Equal(t, "2", state.CurrentNodeID)

			state, err = engine.Submit(ctx, state, tt.age)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, state.CurrentNodeID)
			assert.Equal(t, []string{"1", "2", tt.wantEnd}, state.History)
		})
	}
}

func TestEngine_CompletesWhenNoNextNode(t *testing.T) {
	ctx := context.Background()
	responses := memory.NewResponseStore()
	engine := newEngine(t, runtime.WithResponseStore(responses))

	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)
	for _, answer := range []any{"Ada", 40, true} {
		state, err = engine.Submit(ctx, state, answer)
		require.NoError(t, err)
	}

	assert.True(t, state.Completed())
	assert.Empty(t, state.CurrentNodeID)
	assert.Equal(t, domain.Answers{"name": "Ada", "age": 40, "adult": true}, state.Answers)

	saved, err := responses.ListResponses(ctx, "survey")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "s", saved[0].SessionID)
	assert.Equal(t, state.Answers, saved[0].Answers)

	_, err = engine.Submit(ctx, state, "again")
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)

	actions, done, err := engine.Render(ctx, state)
	require.NoError(t, err)
	assert.True(t, done)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionSystemMessage, actions[0].Type)
}

type failingResponses struct{}

func (failingResponses) SaveResponse(context.Context, domain.Response) error {
	return errors.New("disk full")
}

func (failingResponses) ListResponses(context.Context, string) ([]domain.Response, error) {
	return nil, nil
}

func TestEngine_ResponseStoreFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, runtime.WithResponseStore(failingResponses{}))
	state, _ := engine.Start(ctx, "survey", "s")
	state, _ = engine.Submit(ctx, state, "Ada")
	state, _ = engine.Submit(ctx, state, 40)

	next, err := engine.Submit(ctx, state, true)
	assert.Error(t, err)
	assert.Nil(t, next)
	assert.Equal(t, "3", state.CurrentNodeID)
}

func TestEngine_SubmitDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)

	next, err := engine.Submit(ctx, state, "Ada")
	require.NoError(t, err)
	assert.Empty(t, state.Answers)
	assert.Equal(t, []string{"1"}, state.History)
	assert.Equal(t, "Ada", next.Answers["name"])
}

func TestEngine_Validation(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, runtime.WithMaxAnswerLength(5))
	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)

	for _, blank := range []any{nil, "", "   "} {
		_, err := engine.Submit(ctx, state, blank)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
		assert.Equal(t, "This field is required", verr.Message)
	}

	_, err = engine.Submit(ctx, state, strings.Repeat("é", 6))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "at most 5")

	_, err = engine.Submit(ctx, state, strings.Repeat("é", 5))
	assert.NoError(t, err)
}

func TestEngine_OptionalQuestionAcceptsBlank(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	state, _ := engine.Start(ctx, "survey", "s")
	state, err := engine.Submit(ctx, state, "Ada")
	require.NoError(t, err)

	state, err = engine.Submit(ctx, state, nil)
	require.NoError(t, err)
	assert.Equal(t, "4", state.CurrentNodeID, "a missing age satisfies no comparison")
}

func TestEngine_UnknownCurrentNode(t *testing.T) {
	engine := newEngine(t)
	state := domain.NewState("s", "survey", "ghost")
	_, err := engine.Submit(context.Background(), state, "x")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	_, _, err = engine.Render(context.Background(), state)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, answered []string
	var rejected int
	var complete *domain.CompleteEvent

	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			if e.Rejected {
				rejected++
				return
			}
			answered = append(answered, e.Variable+"->"+e.NextNodeID)
		},
		OnComplete: func(_ context.Context, e *domain.CompleteEvent) {
			complete = e
		},
	}

	ctx := context.Background()
	engine := newEngine(t, runtime.WithLifecycleHooks(hooks), runtime.WithClock(func() time.Time { return clock }))
	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)

	_, err = engine.Submit(ctx, state, "")
	require.Error(t, err)

	for _, answer := range []any{"Ada", 3, "Elm St"} {
		clock = clock.Add(time.Minute)
		state, err = engine.Submit(ctx, state, answer)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"1", "2", "4"}, entered)
	assert.Equal(t, []string{"name->2", "age->4", "minor->"}, answered)
	assert.Equal(t, 1, rejected)
	require.NotNil(t, complete)
	assert.Equal(t, 3, complete.Answered)
	assert.Equal(t, 3*time.Minute, complete.Duration)
	assert.Equal(t, domain.EventComplete, complete.Type)
}

func TestEngine_Inspect(t *testing.T) {
	form, err := newEngine(t).Inspect(context.Background(), "survey")
	require.NoError(t, err)
	assert.Len(t, form.Nodes, 4)
	assert.Len(t, form.Edges, 3)
}

var _ ports.FormEngine = (*runtime.Engine)(nil)
