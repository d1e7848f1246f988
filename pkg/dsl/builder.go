package dsl

import (
	"fmt"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
)

// rowHeight spaces questions vertically on the editor canvas.
const rowHeight = 150

// Builder manages the form construction.
type Builder struct {
	formID string
	name   string
	order  []*NodeBuilder
	nodes  map[string]*NodeBuilder
	edges  []domain.Edge
}

// New creates a new form builder.
func New(formID string) *Builder {
	return &Builder{
		formID: formID,
		name:   formID,
		nodes:  make(map[string]*NodeBuilder),
	}
}

// Name sets the display name of the form.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Add creates a new question in the form.
// If the question already exists, it returns the existing builder.
// Questions are laid out top to bottom in the order they are added.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:       id,
			Position: domain.Position{Y: float64(len(b.order) * rowHeight)},
			Data:     domain.NodeData{Type: domain.QuestionText},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, nb)
	return nb
}

func (b *Builder) connect(source, target string, data domain.EdgeData) {
	b.edges = append(b.edges, domain.Edge{
		ID:     fmt.Sprintf("e%d", len(b.edges)+1),
		Source: source,
		Target: target,
		Data:   data,
	})
}

// Form returns the form as built so far, without checking it.
func (b *Builder) Form() *domain.Form {
	nodes := make([]domain.Node, len(b.order))
	for i, nb := range b.order {
		nodes[i] = nb.node.Clone()
	}
	edges := make([]domain.Edge, len(b.edges))
	copy(edges, b.edges)
	return &domain.Form{
		ID:       b.formID,
		Name:     b.name,
		Nodes:    nodes,
		Edges:    edges,
		Settings: domain.Settings{FormID: b.formID, FormName: b.name},
	}
}

// Build checks the form and compiles it into an in-memory loader.
// Warnings such as unreachable questions do not fail the build.
func (b *Builder) Build() (*memory.FormStore, error) {
	form := b.Form()
	if err := validator.Lint(form).Err(); err != nil {
		return nil, fmt.Errorf("invalid form %s: %w", b.formID, err)
	}
	return memory.NewFormStore(form), nil
}
