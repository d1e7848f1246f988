package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

// Service runs editor operations against a FormStore.
// Writes to the same form are serialised; each write loads the form, applies
// the edit and saves it only when the edit succeeded.
type Service struct {
	store  ports.FormStore
	editor *Editor
	locks  *session.Locks
	logger *slog.Logger
}

// NewService creates a Service. locker may be nil for a single replica.
func NewService(store ports.FormStore, ed *Editor, locker ports.DistributedLocker, logger *slog.Logger) *Service {
	if ed == nil {
		ed = New()
	}
	if logger == nil {
		logger = ed.logger
	}
	return &Service{
		store:  store,
		editor: ed,
		locks:  session.NewLocks(locker, 0, logger),
		logger: logger,
	}
}

// Editor returns the underlying Editor.
func (s *Service) Editor() *Editor { return s.editor }

// Create stores a new seeded form.
func (s *Service) Create(ctx context.Context, id string) (*domain.Form, error) {
	f := s.editor.NewForm(id)
	err := s.locks.Do(ctx, f.ID, func(ctx context.Context) error {
		_, err := s.store.GetForm(ctx, f.ID)
		switch {
		case err == nil:
			return fmt.Errorf("form %s: %w", f.ID, domain.ErrFormExists)
		case !errors.Is(err, domain.ErrFormNotFound):
			return fmt.Errorf("failed to check form %s: %w", f.ID, err)
		}
		return s.store.SaveForm(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("form created", "form_id", f.ID)
	return f, nil
}

// Get returns a form.
func (s *Service) Get(ctx context.Context, id string) (*domain.Form, error) {
	return s.store.GetForm(ctx, id)
}

// List returns every form id.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.ListForms(ctx)
}

// Delete removes a form.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.locks.Do(ctx, id, func(ctx context.Context) error {
		return s.store.DeleteForm(ctx, id)
	})
}

// Edit applies fn to the stored form and saves the result.
func (s *Service) Edit(ctx context.Context, id string, fn func(*Editor, *domain.Form) error) (*domain.Form, error) {
	var out *domain.Form
	err := s.locks.Do(ctx, id, func(ctx context.Context) error {
		f, err := s.store.GetForm(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(s.editor, f); err != nil {
			return err
		}
		if err := s.store.SaveForm(ctx, f); err != nil {
			return fmt.Errorf("failed to save form %s: %w", id, err)
		}
		out = f
		return nil
	})
	return out, err
}

// AddNode adds a question to the stored form.
func (s *Service) AddNode(ctx context.Context, formID string, t domain.QuestionType) (domain.Node, error) {
	var n domain.Node
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		n, err = ed.AddNode(f, t)
		return err
	})
	return n, err
}

// DuplicateNode copies a question of the stored form.
func (s *Service) DuplicateNode(ctx context.Context, formID, nodeID string) (domain.Node, error) {
	var n domain.Node
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		n, err = ed.DuplicateNode(f, nodeID)
		return err
	})
	return n, err
}

// UpdateNode patches a question of the stored form.
func (s *Service) UpdateNode(ctx context.Context, formID, nodeID string, patch map[string]any) (domain.Node, error) {
	var n domain.Node
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		n, err = ed.UpdateNode(f, nodeID, patch)
		return err
	})
	return n, err
}

// MoveNode repositions a question of the stored form.
func (s *Service) MoveNode(ctx context.Context, formID, nodeID string, pos domain.Position) error {
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) error {
		return ed.MoveNode(f, nodeID, pos)
	})
	return err
}

// DeleteNode removes a question and its edges from the stored form.
func (s *Service) DeleteNode(ctx context.Context, formID, nodeID string) error {
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) error {
		return ed.DeleteNode(f, nodeID)
	})
	return err
}

// Connect links two questions of the stored form.
func (s *Service) Connect(ctx context.Context, formID, source, target string) (domain.Edge, error) {
	var edge domain.Edge
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		edge, err = ed.Connect(f, source, target)
		return err
	})
	return edge, err
}

// UpdateEdge patches an edge of the stored form.
func (s *Service) UpdateEdge(ctx context.Context, formID, edgeID string, patch map[string]any) (domain.Edge, error) {
	var edge domain.Edge
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		edge, err = ed.UpdateEdge(f, edgeID, patch)
		return err
	})
	return edge, err
}

// DeleteEdge removes an edge of the stored form.
func (s *Service) DeleteEdge(ctx context.Context, formID, edgeID string) error {
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) error {
		return ed.DeleteEdge(f, edgeID)
	})
	return err
}

// UpdateSettings patches the settings of the stored form.
func (s *Service) UpdateSettings(ctx context.Context, formID string, patch map[string]any) (domain.Settings, error) {
	var settings domain.Settings
	_, err := s.Edit(ctx, formID, func(ed *Editor, f *domain.Form) (err error) {
		settings, err = ed.UpdateSettings(f, patch)
		return err
	})
	return settings, err
}

// PreviewEdge evaluates an edge of the stored form against sample answers.
func (s *Service) PreviewEdge(ctx context.Context, formID, edgeID string, answers domain.Answers) (bool, error) {
	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return false, err
	}
	return s.editor.PreviewEdge(f, edgeID, answers)
}
