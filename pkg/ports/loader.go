package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

// FormLoader defines how the engine retrieves form graphs.
// This allows the storage layer (Loam, files, SQL, memory) to be decoupled.
type FormLoader interface {
	// GetForm returns the form with the given ID.
	// Returns domain.ErrFormNotFound if it does not exist.
	GetForm(ctx context.Context, id string) (*domain.Form, error)

	// ListForms returns the IDs of every available form.
	ListForms(ctx context.Context) ([]string, error)
}

// FormStore is a FormLoader that can also persist edits.
type FormStore interface {
	FormLoader

	// SaveForm creates or replaces a form.
	SaveForm(ctx context.Context, form *domain.Form) error

	// DeleteForm removes a form. Deleting a missing form is not an error.
	DeleteForm(ctx context.Context, id string) error
}
