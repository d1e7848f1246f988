package editor

import (
	"fmt"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/domain"
)

// AddNode appends a question of type t below the lowest existing one.
func (e *Editor) AddNode(f *domain.Form, t domain.QuestionType) (domain.Node, error) {
	if !t.Valid() {
		return domain.Node{}, validator.Errors{{Field: "type", Rule: "questiontype", Message: "Invalid question type selected"}}
	}

	y := 100.0
	if len(f.Nodes) > 0 {
		y = f.Nodes[0].Position.Y
		for _, n := range f.Nodes[1:] {
			y = max(y, n.Position.Y)
		}
		y += NodeSpacing
	}

	n := domain.Node{
		ID:       e.newID(),
		Position: domain.Position{X: 250, Y: y},
		Data: domain.NodeData{
			Question:     DefaultQuestion,
			Type:         t,
			VariableName: e.variableName(),
		},
	}
	if t.HasOptions() {
		n.Data.Options = append([]string(nil), DefaultOptions...)
	}

	f.Nodes = append(f.Nodes, n)
	RecomputeStart(f)
	e.touch(f)
	e.logger.Debug("node added", "form_id", f.ID, "node_id", n.ID, "type", t)
	return n.Clone(), nil
}

// DuplicateNode copies a question under a fresh id and variable name.
func (e *Editor) DuplicateNode(f *domain.Form, nodeID string) (domain.Node, error) {
	i, err := indexOfNode(f, nodeID)
	if err != nil {
		return domain.Node{}, err
	}

	n := f.Nodes[i].Clone()
	n.ID = e.newID()
	n.Position.X += DuplicateOffset
	n.Position.Y += DuplicateOffset
	n.Data.VariableName = e.variableName()

	f.Nodes = append(f.Nodes, n)
	RecomputeStart(f)
	e.touch(f)
	return n.Clone(), nil
}

// UpdateNode merges patch into the question's data.
// Keys are the JSON names of domain.NodeData (question, type, required, ...).
// The result must validate and keep its variable name unique.
func (e *Editor) UpdateNode(f *domain.Form, nodeID string, patch map[string]any) (domain.Node, error) {
	i, err := indexOfNode(f, nodeID)
	if err != nil {
		return domain.Node{}, err
	}

	next := f.Nodes[i].Clone()
	if _, ok := patch["options"]; ok {
		next.Data.Options = nil
	}
	if _, ok := patch["mediaTypes"]; ok {
		next.Data.MediaTypes = nil
	}
	if err := decodePatch(patch, &next.Data); err != nil {
		return domain.Node{}, err
	}
	if err := validator.ValidateNode(next); err != nil {
		return domain.Node{}, err
	}
	if owner, ok := domain.FindNodeByVariable(f.Nodes, next.Data.VariableName); ok && owner.ID != nodeID {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrDuplicateVariable, next.Data.VariableName)
	}

	f.Nodes[i] = next
	e.touch(f)
	return next.Clone(), nil
}

// MoveNode places a question on the canvas.
func (e *Editor) MoveNode(f *domain.Form, nodeID string, pos domain.Position) error {
	i, err := indexOfNode(f, nodeID)
	if err != nil {
		return err
	}
	next := f.Nodes[i]
	next.Position = pos
	if err := validator.ValidateNode(next); err != nil {
		return err
	}
	f.Nodes[i].Position = pos
	e.touch(f)
	return nil
}

// DeleteNode removes a question together with every edge touching it.
func (e *Editor) DeleteNode(f *domain.Form, nodeID string) error {
	i, err := indexOfNode(f, nodeID)
	if err != nil {
		return err
	}
	f.Nodes = append(f.Nodes[:i], f.Nodes[i+1:]...)

	kept := f.Edges[:0]
	for _, edge := range f.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			kept = append(kept, edge)
		}
	}
	f.Edges = kept

	RecomputeStart(f)
	e.touch(f)
	e.logger.Debug("node deleted", "form_id", f.ID, "node_id", nodeID)
	return nil
}
