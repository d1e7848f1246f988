package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/formflow/pkg/domain"
)

// Loader adapts a Loam repository of form documents to ports.FormLoader.
// Each document's frontmatter is a FormMetadata; the body is free text
// and is not interpreted.
type Loader struct {
	Repo *loam.TypedRepository[FormMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[FormMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode returns numbers as json.Number; ReadOnly avoids Loam's
	// dev-mode sandbox since forms are never written through this adapter.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[FormMetadata](repo)), nil
}

// GetForm loads and converts one form document.
func (l *Loader) GetForm(ctx context.Context, id string) (*domain.Form, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFormNotFound, id, err)
	}

	rawID := doc.Data.ID
	if rawID == "" {
		rawID = doc.ID
	}
	return Convert(trimExtension(rawID), doc.Data)
}

// ListForms lists all form documents, rejecting ID collisions.
func (l *Loader) ListForms(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Convert maps frontmatter onto the domain graph.
// Node types default to text; edge ids default to "e<n>".
func Convert(id string, meta FormMetadata) (*domain.Form, error) {
	form := &domain.Form{
		ID:   id,
		Name: meta.Name,
		Settings: domain.Settings{
			FormID:       id,
			FormName:     meta.Name,
			StartNodeID:  meta.Start,
			IsPublished:  meta.Published,
			PrimaryColor: meta.Color,
		},
	}

	var shorthand []EdgeMetadata
	for i, n := range meta.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("form %s: node #%d has no id", id, i+1)
		}
		qt := domain.QuestionType(n.Type)
		if qt == "" {
			qt = domain.QuestionText
		}
		node := domain.Node{
			ID:       n.ID,
			Position: domain.Position{X: n.X, Y: n.Y},
			Data: domain.NodeData{
				Question:     n.Question,
				Type:         qt,
				Required:     n.Required,
				VariableName: n.Variable,
				HelpText:     n.Help,
				Options:      n.Options,
				ImageURL:     n.Image,
				VideoURL:     n.Video,
				PDFURL:       n.PDF,
			},
		}
		for _, m := range n.Media {
			node.Data.MediaTypes = append(node.Data.MediaTypes, domain.MediaType(m))
		}
		form.Nodes = append(form.Nodes, node)

		if n.To != "" {
			shorthand = append(shorthand, EdgeMetadata{From: n.ID, To: n.To})
		}
	}

	for i, e := range append(meta.Edges, shorthand...) {
		edge := domain.Edge{
			ID:     e.ID,
			Source: e.From,
			Target: e.To,
			Data: domain.EdgeData{
				LogicalOperator:  domain.LogicalAnd,
				CustomExpression: e.Expression,
				Conditions:       []domain.Condition{},
			},
		}
		if edge.ID == "" {
			edge.ID = fmt.Sprintf("e%d", i+1)
		}
		if strings.EqualFold(e.Match, string(domain.LogicalOr)) {
			edge.Data.LogicalOperator = domain.LogicalOr
		}
		for _, c := range e.When {
			cond := domain.Condition{
				SourceVariable: c.Var,
				Operator:       domain.ComparisonOperator(c.Op),
				Value:          plainValue(c.Value),
				Type:           domain.TargetValue,
			}
			if c.Ref != "" {
				cond.Type = domain.TargetVariable
				cond.Value = c.Ref
			}
			edge.Data.Conditions = append(edge.Data.Conditions, cond)
		}
		form.Edges = append(form.Edges, edge)
	}
	return form, nil
}

// plainValue turns strict-mode json.Number into float64 so comparisons
// see an ordinary number.
func plainValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
