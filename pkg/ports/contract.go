package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "survey", "q1")
		state.Answers["name"] = "Ada"
		state.Answers["age"] = 42
		state.History = append(state.History, "q2")
		state.CurrentNodeID = "q2"

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "survey", loaded.FormID)
		assert.Equal(t, "q2", loaded.CurrentNodeID)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, []string{"q1", "q2"}, loaded.History)
		assert.Equal(t, "Ada", loaded.Answers["name"])
		// Serializing stores may hand numbers back as float64.
		assert.EqualValues(t, 42, loaded.Answers["age"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := domain.NewState(sessionID, "survey", "q1")
		state.Status = domain.StatusCompleted
		state.CurrentNodeID = ""
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, loaded.Completed())
		assert.Empty(t, loaded.Answers)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "survey", "q1"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, "survey", "q1")))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, "survey", "q1")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// ContractForm is the fixture used by RunFormStoreContract.
func ContractForm(id string) *domain.Form {
	return &domain.Form{
		ID:   id,
		Name: "Contract " + id,
		Nodes: []domain.Node{
			{ID: "1", Data: domain.NodeData{Question: "Name?", Type: domain.QuestionText, VariableName: "name", Required: true}},
			{ID: "2", Position: domain.Position{Y: 150}, Data: domain.NodeData{
				Question: "Pick one", Type: domain.QuestionDropdown, VariableName: "pick", Options: []string{"a", "b"},
			}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "1", Target: "2", Data: domain.EdgeData{
				LogicalOperator: domain.LogicalOr,
				Conditions: []domain.Condition{
					{SourceVariable: "name", Operator: domain.OpContains, Value: "a", Type: domain.TargetValue},
					{SourceVariable: "name", Operator: domain.OpIsNotEmpty},
				},
			}},
		},
		Settings: domain.Settings{FormID: id, FormName: "Contract " + id, StartNodeID: "1"},
	}
}

// RunFormStoreContract verifies a FormStore implementation.
func RunFormStoreContract(t *testing.T, store FormStore) {
	ctx := context.Background()
	formID := "contract-form-" + time.Now().Format("20060102150405")

	t.Run("Save and Get", func(t *testing.T) {
		want := ContractForm(formID)
		require.NoError(t, store.SaveForm(ctx, want))

		got, err := store.GetForm(ctx, formID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		require.Len(t, got.Nodes, 2)
		assert.Equal(t, want.Nodes[1].Data, got.Nodes[1].Data)
		assert.Equal(t, want.Nodes[1].Position, got.Nodes[1].Position)
		require.Len(t, got.Edges, 1)
		assert.Equal(t, domain.LogicalOr, got.Edges[0].Data.LogicalOperator)
		require.Len(t, got.Edges[0].Data.Conditions, 2)
		assert.Equal(t, "a", got.Edges[0].Data.Conditions[0].Value)
		assert.Equal(t, domain.OpIsNotEmpty, got.Edges[0].Data.Conditions[1].Operator)
		assert.Equal(t, "1", got.Settings.StartNodeID)
	})

	t.Run("Get Returns Copy", func(t *testing.T) {
		got, err := store.GetForm(ctx, formID)
		require.NoError(t, err)
		got.Nodes[0].Data.Question = "mutated"

		again, err := store.GetForm(ctx, formID)
		require.NoError(t, err)
		assert.Equal(t, "Name?", again.Nodes[0].Data.Question)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.ListForms(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, formID)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetForm(ctx, "missing-"+formID)
		assert.ErrorIs(t, err, domain.ErrFormNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteForm(ctx, formID))
		_, err := store.GetForm(ctx, formID)
		assert.ErrorIs(t, err, domain.ErrFormNotFound)
		assert.NoError(t, store.DeleteForm(ctx, formID), "deleting twice is not an error")
	})
}

// RunResponseStoreContract verifies a ResponseStore implementation.
func RunResponseStoreContract(t *testing.T, store ResponseStore) {
	ctx := context.Background()
	formID := "contract-responses-" + time.Now().Format("20060102150405")
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and List In Order", func(t *testing.T) {
		for i, name := range []string{"first", "second"} {
			err := store.SaveResponse(ctx, domain.Response{
				ID:          formID + "-" + name,
				FormID:      formID,
				SessionID:   "s-" + name,
				Answers:     domain.Answers{"name": name, "ok": true},
				CompletedAt: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}
		require.NoError(t, store.SaveResponse(ctx, domain.Response{
			ID: formID + "-other", FormID: "other-" + formID, SessionID: "s-other",
			Answers: domain.Answers{}, CompletedAt: base,
		}))

		got, err := store.ListResponses(ctx, formID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "s-first", got[0].SessionID)
		assert.Equal(t, "second", got[1].Answers["name"])
		assert.Equal(t, true, got[1].Answers["ok"])
		assert.True(t, base.Equal(got[0].CompletedAt))
	})

	t.Run("Unknown Form", func(t *testing.T) {
		got, err := store.ListResponses(ctx, "nobody-"+formID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
