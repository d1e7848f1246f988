package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

// FormEngine is the interface transports (HTTP, MCP, CLI) drive.
// The engine itself keeps no session state; callers persist what it returns.
type FormEngine interface {
	// Start creates a session positioned at the form's start question.
	Start(ctx context.Context, formID, sessionID string) (*domain.State, error)

	// Render returns the actions presenting the current question, and whether the session is done.
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)

	// Submit records an answer for the current question and advances.
	Submit(ctx context.Context, state *domain.State, answer any) (*domain.State, error)

	// Inspect returns the form graph.
	Inspect(ctx context.Context, formID string) (*domain.Form, error)
}
