package runtime_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/internal/runtime"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/adapters/sqlite"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

func TestInterpolate(t *testing.T) {
	answers := domain.Answers{
		"name":  "Ada",
		"agree": false,
		"born":  time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC),
		"score": 4.5,
		"picks": []any{"a", "b"},
	}

	tests := map[string]string{
		"Hi [name]!":              "Hi Ada!",
		"Agreed: [agree]":         "Agreed: No",
		"Born [born]":             "Born December 10, 1815",
		"Score [score]/5":         "Score 4.5/5",
		"Picked [picks]":          "Picked a,b",
		"Hello [missing].":        "Hello .",
		"[name] and [name]":       "Ada and Ada",
		"No [placeholder-here] x": "No [placeholder-here] x",
	}
	for in, want := range tests {
		assert.Equal(t, want, runtime.Interpolate(in, answers, nil), in)
	}
}

func TestInterpolate_DateText(t *testing.T) {
	nodes := []domain.Node{
		question("1", "when", "When?", domain.QuestionDate),
		question("2", "note", "Note?", domain.QuestionText),
	}

	tests := []struct {
		name    string
		answers domain.Answers
		want    string
	}{
		{"stored timestamp", domain.Answers{"when": "2024-03-05T00:00:00Z"}, "On March 5, 2024"},
		{"form input", domain.Answers{"when": "2024-03-05"}, "On March 5, 2024"},
		{"unreadable", domain.Answers{"when": "someday"}, "On someday"},
		{"text stays text", domain.Answers{"note": "2024-03-05"}, "Note 2024-03-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "On [when]"
			if _, ok := tt.answers["note"]; ok {
				text = "Note [note]"
			}
			assert.Equal(t, tt.want, runtime.Interpolate(text, tt.answers, nodes))
		})
	}
}

func TestRender_DateAfterReload(t *testing.T) {
	ctx := context.Background()
	form := &domain.Form{
		ID: "trip",
		Nodes: []domain.Node{
			question("1", "when", "When do you leave?", domain.QuestionDate),
			question("2", "why", "Why on [when]?", domain.QuestionText),
		},
		Edges: []domain.Edge{{ID: "e1", Source: "1", Target: "2"}},
	}
	engine := runtime.NewEngine(memory.NewFormStore(form))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "formflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	state, err := engine.Start(ctx, "trip", "s1")
	require.NoError(t, err)
	state, err = engine.Submit(ctx, state, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, db.Save(ctx, "s1", state))
	loaded, err := db.Load(ctx, "s1")
	require.NoError(t, err)

	actions, _, err := engine.Render(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, "Why on March 5, 2024?", actions[0].Payload)
}

func TestFormatAnswer(t *testing.T) {
	assert.Equal(t, "", runtime.FormatAnswer(nil))
	assert.Equal(t, "Yes", runtime.FormatAnswer(true))
	assert.Equal(t, "42", runtime.FormatAnswer(42))
}

func TestRender_Question(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)
	state, err = engine.Submit(ctx, state, "Ada")
	require.NoError(t, err)

	actions, done, err := engine.Render(ctx, state)
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, actions, 2)
	assert.Equal(t, domain.ActionRenderContent, actions[0].Type)
	assert.Equal(t, "How old are you, Ada?", actions[0].Payload)

	assert.Equal(t, domain.ActionRequestInput, actions[1].Type)
	input, ok := actions[1].Payload.(domain.InputRequest)
	require.True(t, ok)
	assert.Equal(t, "age", input.Variable)
	assert.Equal(t, domain.QuestionRating, input.Type)
}

type stubPhraser struct {
	reply string
	err   error
	delay time.Duration
	got   []ports.PhraseRequest
}

func (p *stubPhraser) Phrase(ctx context.Context, req ports.PhraseRequest) (string, error) {
	p.got = append(p.got, req)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, p.err
}

// blockingPhraser waits for release whatever its context says.
type blockingPhraser struct {
	release chan struct{}
}

func (p *blockingPhraser) Phrase(context.Context, ports.PhraseRequest) (string, error) {
	<-p.release
	return "late", nil
}

func renderSecond(t *testing.T, p *stubPhraser, opts ...runtime.EngineOption) string {
	t.Helper()
	ctx := context.Background()
	engine := newEngine(t, append(opts, runtime.WithPhraser(p))...)

	state, err := engine.Start(ctx, "survey", "s")
	require.NoError(t, err)

	first, _, err := engine.Render(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "What's your name?", first[0].Payload, "first question is never phrased")
	assert.Empty(t, p.got)

	state, err = engine.Submit(ctx, state, "Ada")
	require.NoError(t, err)
	actions, _, err := engine.Render(ctx, state)
	require.NoError(t, err)
	return actions[0].Payload.(string)
}

func TestRender_Phrasing(t *testing.T) {
	t.Run("lead-in is prefixed", func(t *testing.T) {
		p := &stubPhraser{reply: "Nice to meet you, Ada!"}
		assert.Equal(t, "Nice to meet you, Ada! How old are you, Ada?", renderSecond(t, p))

		require.Len(t, p.got, 1)
		assert.Equal(t, "Survey", p.got[0].FormName)
		assert.Equal(t, "How old are you, Ada?", p.got[0].Question)
		assert.Equal(t, "What's your name?", p.got[0].PreviousQuestion)
		assert.Equal(t, "Ada", p.got[0].PreviousAnswer)
	})

	t.Run("question inside reply appears once", func(t *testing.T) {
		p := &stubPhraser{reply: "Thanks! How old are you, Ada? Take your time."}
		assert.Equal(t, "Thanks! Take your time. How old are you, Ada?", renderSecond(t, p))
	})

	t.Run("blank reply", func(t *testing.T) {
		p := &stubPhraser{reply: "  "}
		assert.Equal(t, "How old are you, Ada?", renderSecond(t, p))
	})

	t.Run("error falls back", func(t *testing.T) {
		p := &stubPhraser{err: errors.New("rate limited")}
		assert.Equal(t, "How old are you, Ada?", renderSecond(t, p))
	})

	t.Run("phraser ignoring its context", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		p := &blockingPhraser{release: release}
		engine := newEngine(t, runtime.WithPhraser(p), runtime.WithPhraseTimeout(10*time.Millisecond))

		ctx := context.Background()
		state, err := engine.Start(ctx, "survey", "s")
		require.NoError(t, err)
		state, err = engine.Submit(ctx, state, "Ada")
		require.NoError(t, err)

		start := time.Now()
		actions, _, err := engine.Render(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "How old are you, Ada?", actions[0].Payload)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout falls back", func(t *testing.T) {
		p := &stubPhraser{reply: "too late", delay: time.Second}
		got := renderSecond(t, p, runtime.WithPhraseTimeout(10*time.Millisecond))
		assert.Equal(t, "How old are you, Ada?", got)
	})
}
