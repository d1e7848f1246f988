package domain

import "time"

// ExecutionStatus tells whether a response session is still collecting answers.
type ExecutionStatus string

const (
	StatusActive    ExecutionStatus = "active"    // Waiting for an answer to CurrentNodeID
	StatusCompleted ExecutionStatus = "completed" // Flow reached the implicit terminal state
)

// State is the snapshot of one response session.
type State struct {
	SessionID string `json:"session_id"`
	FormID    string `json:"form_id"`

	// CurrentNodeID is the question awaiting an answer. Empty once completed.
	CurrentNodeID string `json:"current_node_id"`

	Status ExecutionStatus `json:"status"`

	// Answers is the session's answer set, keyed by variable name.
	Answers Answers `json:"answers"`

	// History lists the node ids visited, in order.
	History []string `json:"history"`

	StartedAt time.Time `json:"started_at"`
}

// NewState creates a clean state positioned at the start node.
func NewState(sessionID, formID, startNodeID string) *State {
	return &State{
		SessionID:     sessionID,
		FormID:        formID,
		CurrentNodeID: startNodeID,
		Status:        StatusActive,
		Answers:       make(Answers),
		History:       []string{startNodeID},
		StartedAt:     time.Now().UTC(),
	}
}

// Completed reports whether the session reached the terminal state.
func (s *State) Completed() bool {
	return s.Status == StatusCompleted
}

// Snapshot returns a deep copy safe for mutation.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = s.Answers.Clone()
	next.History = append([]string(nil), s.History...)
	return &next
}
