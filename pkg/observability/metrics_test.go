package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/observability"
)

func form() *domain.Form {
	return &domain.Form{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "1", Data: domain.NodeData{Question: "Name?", Type: domain.QuestionText, VariableName: "name", Required: true}},
			{ID: "2", Data: domain.NodeData{Question: "Age?", Type: domain.QuestionRating, VariableName: "age"}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "1", Target: "2", Data: domain.EdgeData{CustomExpression: "name =="}},
			{ID: "e2", Source: "1", Target: "2"},
		},
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var logged int
	counting := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { logged++ },
	}

	eng, err := formflow.New("",
		formflow.WithLoader(memory.NewFormStore(form())),
		formflow.WithLifecycleHooks(observability.Chain(m.Hooks(), counting)),
		formflow.WithExpressionErrorHandler(m.ObserveExpressionError),
	)
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start(ctx, "f", "s1")
	require.NoError(t, err)
	_, err = eng.Submit(ctx, state, "")
	require.Error(t, err)
	state, err = eng.Submit(ctx, state, "Ada")
	require.NoError(t, err)
	state, err = eng.Submit(ctx, state, 30)
	require.NoError(t, err)
	require.True(t, state.Completed())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("f")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted.WithLabelValues("f")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("f", "2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Answers.WithLabelValues("f", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("f", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpressionErrors.WithLabelValues("e1")))
	assert.Equal(t, 2, logged)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestChain_SkipsNil(t *testing.T) {
	h := observability.Chain(domain.LifecycleHooks{}, domain.LifecycleHooks{})
	assert.Nil(t, h.OnNodeEnter)
	assert.Nil(t, h.OnAnswer)
	assert.Nil(t, h.OnComplete)
}
