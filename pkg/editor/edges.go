package editor

import (
	"fmt"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
)

// Connect adds an unconditional edge from source to target.
// It fails with domain.ErrCycle when the edge would close a loop.
func (e *Editor) Connect(f *domain.Form, source, target string) (domain.Edge, error) {
	if _, err := indexOfNode(f, source); err != nil {
		return domain.Edge{}, err
	}
	if _, err := indexOfNode(f, target); err != nil {
		return domain.Edge{}, err
	}
	for _, existing := range f.Edges {
		if existing.Source == source && existing.Target == target {
			return domain.Edge{}, fmt.Errorf("%w: %s -> %s", domain.ErrDuplicateEdge, source, target)
		}
	}

	edge := domain.Edge{
		ID:     e.newID(),
		Source: source,
		Target: target,
		Data: domain.EdgeData{
			Conditions:      []domain.Condition{},
			LogicalOperator: domain.LogicalAnd,
		},
	}
	if flow.WouldCreateCycle(f.Nodes, f.Edges, edge) {
		e.logger.Debug("connection rejected", "form_id", f.ID, "source", source, "target", target)
		return domain.Edge{}, domain.ErrCycle
	}

	f.Edges = append(f.Edges, edge)
	RecomputeStart(f)
	e.touch(f)
	return edge.Clone(), nil
}

// UpdateEdge merges patch into the edge's data (conditions, logicalOperator,
// customExpression). A missing condition list or operator is defaulted.
func (e *Editor) UpdateEdge(f *domain.Form, edgeID string, patch map[string]any) (domain.Edge, error) {
	i, err := indexOfEdge(f, edgeID)
	if err != nil {
		return domain.Edge{}, err
	}

	next := f.Edges[i].Clone()
	if _, ok := patch["conditions"]; ok {
		next.Data.Conditions = nil
	}
	if err := decodePatch(patch, &next.Data); err != nil {
		return domain.Edge{}, err
	}
	if next.Data.Conditions == nil {
		next.Data.Conditions = []domain.Condition{}
	}
	if next.Data.LogicalOperator == "" {
		next.Data.LogicalOperator = domain.LogicalAnd
	}
	if err := validator.ValidateEdge(next); err != nil {
		return domain.Edge{}, err
	}

	f.Edges[i] = next
	e.touch(f)
	return next.Clone(), nil
}

// DeleteEdge removes an edge.
func (e *Editor) DeleteEdge(f *domain.Form, edgeID string) error {
	i, err := indexOfEdge(f, edgeID)
	if err != nil {
		return err
	}
	f.Edges = append(f.Edges[:i], f.Edges[i+1:]...)
	RecomputeStart(f)
	e.touch(f)
	return nil
}

// PreviewEdge reports whether the edge would be followed for the given sample answers.
func (e *Editor) PreviewEdge(f *domain.Form, edgeID string, answers domain.Answers) (bool, error) {
	i, err := indexOfEdge(f, edgeID)
	if err != nil {
		return false, err
	}
	return e.navigator.IsActive(f.Edges[i], answers, f.Nodes), nil
}
