package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/editor"
)

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := editor.NewService(memory.NewFormStore(), nil, nil, nil)

	f, err := svc.Create(ctx, "onboarding")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "onboarding")
	assert.ErrorIs(t, err, domain.ErrFormExists)

	age, err := svc.AddNode(ctx, f.ID, domain.QuestionRating)
	require.NoError(t, err)
	_, err = svc.UpdateNode(ctx, f.ID, age.ID, map[string]any{"variableName": "age", "question": "How old are you?"})
	require.NoError(t, err)

	edge, err := svc.Connect(ctx, f.ID, f.Nodes[0].ID, age.ID)
	require.NoError(t, err)
	_, err = svc.Connect(ctx, f.ID, age.ID, f.Nodes[0].ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = svc.UpdateEdge(ctx, f.ID, edge.ID, map[string]any{"customExpression": "user_name != ''"})
	require.NoError(t, err)
	ok, err := svc.PreviewEdge(ctx, f.ID, edge.ID, domain.Answers{"user_name": "Ada"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.UpdateSettings(ctx, f.ID, map[string]any{"isPublished": true})
	require.NoError(t, err)

	stored, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 2)
	assert.Len(t, stored.Edges, 1)
	assert.True(t, stored.Settings.IsPublished)
	assert.Equal(t, f.Nodes[0].ID, stored.Settings.StartNodeID)

	dup, err := svc.DuplicateNode(ctx, f.ID, age.ID)
	require.NoError(t, err)
	require.NoError(t, svc.MoveNode(ctx, f.ID, dup.ID, domain.Position{X: 1, Y: 2}))
	require.NoError(t, svc.DeleteNode(ctx, f.ID, age.ID))
	assert.ErrorIs(t, svc.DeleteEdge(ctx, f.ID, edge.ID), domain.ErrEdgeNotFound, "removed with its source")
}

// unreachableStore fails every lookup the way a dropped database would.
type unreachableStore struct {
	*memory.FormStore
	saves int
}

func (s *unreachableStore) GetForm(context.Context, string) (*domain.Form, error) {
	return nil, errors.New("connection refused")
}

func (s *unreachableStore) SaveForm(ctx context.Context, f *domain.Form) error {
	s.saves++
	return s.FormStore.SaveForm(ctx, f)
}

func TestService_CreateStopsOnLookupFailure(t *testing.T) {
	store := &unreachableStore{FormStore: memory.NewFormStore()}
	svc := editor.NewService(store, nil, nil, nil)

	_, err := svc.Create(context.Background(), "onboarding")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, domain.ErrFormExists)
	assert.Zero(t, store.saves)
}

func TestService_FailedEditIsNotSaved(t *testing.T) {
	ctx := context.Background()
	svc := editor.NewService(memory.NewFormStore(), nil, nil, nil)
	f, err := svc.Create(ctx, "f1")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = svc.Edit(ctx, f.ID, func(ed *editor.Editor, f *domain.Form) error {
		if _, err := ed.AddNode(f, domain.QuestionText); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 1)

	_, err = svc.AddNode(ctx, "ghost", domain.QuestionText)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)

	require.NoError(t, svc.Delete(ctx, f.ID))
	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestService_ConcurrentEdits(t *testing.T) {
	ctx := context.Background()
	svc := editor.NewService(memory.NewFormStore(), nil, nil, nil)
	f, err := svc.Create(ctx, "f1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddNode(ctx, f.ID, domain.QuestionText)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, writers+1)
}
