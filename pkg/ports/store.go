package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

// StateStore defines the interface for persisting response-session state.
// This lets a respondent stop and resume, and lets replicas share sessions.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}

// ResponseStore records the answers of completed sessions.
type ResponseStore interface {
	SaveResponse(ctx context.Context, resp domain.Response) error

	// ListResponses returns the responses of one form, oldest first.
	ListResponses(ctx context.Context, formID string) ([]domain.Response, error)
}
