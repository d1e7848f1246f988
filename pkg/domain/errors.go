package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFormNotFound is returned when a form ID cannot be found in the store.
	ErrFormNotFound = errors.New("form not found")

	// ErrFormExists is returned when creating a form whose ID is taken.
	ErrFormExists = errors.New("form already exists")

	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrCycle is returned when connecting two nodes would create a loop in the flow.
	ErrCycle = errors.New("cannot create a loop in the form flow")

	// ErrDuplicateEdge is returned when two nodes are already connected in the same direction.
	ErrDuplicateEdge = errors.New("nodes are already connected")

	// ErrDuplicateVariable is returned when a variable name is already used by another node.
	ErrDuplicateVariable = errors.New("variable name is already in use")

	// ErrSessionCompleted is returned when an answer is submitted to a finished session.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrInvalidPatch is returned when a partial update names unknown fields or carries mistyped values.
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrEmptyForm is returned when a session is started on a form without questions.
	ErrEmptyForm = errors.New("form has no questions")
)

// ValidationError reports an answer rejected before it reached the answer set.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
