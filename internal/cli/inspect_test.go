package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
)

func TestLintForms(t *testing.T) {
	good := &domain.Form{
		ID: "good",
		Nodes: []domain.Node{
			{ID: "1", Data: domain.NodeData{Question: "Name?", Type: domain.QuestionText, VariableName: "name"}},
		},
	}
	empty := &domain.Form{ID: "empty"}
	forms := memory.NewFormStore(good, empty)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, LintForms(ctx, forms, []string{"good"}, &out))
	assert.Equal(t, "good: ok\n", out.String())

	out.Reset()
	err := LintForms(ctx, forms, nil, &out)
	assert.ErrorIs(t, err, ErrInvalidForms)
	assert.Contains(t, out.String(), "empty: 1 errors, 0 warnings")
	assert.Contains(t, out.String(), "[error] form: form has no questions")

	err = LintForms(ctx, forms, []string{"ghost"}, &out)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)

	out.Reset()
	require.NoError(t, LintForms(ctx, memory.NewFormStore(), nil, &out))
	assert.Equal(t, "No forms found.\n", out.String())
}
