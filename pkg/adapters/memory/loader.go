package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/formflow/pkg/domain"
)

// FormStore implements ports.FormStore using an in-memory map.
// Forms are cloned on the way in and out, so callers never share graphs.
type FormStore struct {
	forms map[string]*domain.Form
	mu    sync.RWMutex
}

// NewFormStore creates a store seeded with the given forms.
func NewFormStore(forms ...*domain.Form) *FormStore {
	s := &FormStore{forms: make(map[string]*domain.Form, len(forms))}
	for _, f := range forms {
		s.forms[f.ID] = f.Clone()
	}
	return s
}

// NewFromNodes builds a single-form store, improving DX for tests.
func NewFromNodes(formID string, nodes []domain.Node, edges []domain.Edge) (*FormStore, error) {
	if formID == "" {
		return nil, fmt.Errorf("form missing ID")
	}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node missing ID in form %s", formID)
		}
	}
	return NewFormStore(&domain.Form{
		ID:       formID,
		Name:     formID,
		Nodes:    nodes,
		Edges:    edges,
		Settings: domain.Settings{FormID: formID, FormName: formID},
	}), nil
}

// GetForm returns a copy of the stored form.
func (s *FormStore) GetForm(ctx context.Context, id string) (*domain.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, id)
	}
	return f.Clone(), nil
}

// ListForms returns all form IDs, sorted.
func (s *FormStore) ListForms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}

// SaveForm stores a copy of form and stamps its timestamps.
func (s *FormStore) SaveForm(ctx context.Context, form *domain.Form) error {
	if form.ID == "" {
		return fmt.Errorf("form missing ID")
	}
	c := form.Clone()
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.forms[c.ID]; ok && c.CreatedAt.IsZero() {
		c.CreatedAt = prev.CreatedAt
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.forms[c.ID] = c
	return nil
}

// DeleteForm removes a form.
func (s *FormStore) DeleteForm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, id)
	return nil
}
