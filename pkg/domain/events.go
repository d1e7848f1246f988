package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventAnswer    EventType = "answer"
	EventComplete  EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	FormID    string    `json:"form_id"`
}

// NodeEvent is emitted when a session moves onto a question.
type NodeEvent struct {
	EventBase
	NodeID       string       `json:"node_id"`
	QuestionType QuestionType `json:"question_type"`
	// Initial is set for the start question of a new session.
	Initial bool `json:"initial,omitempty"`
}

// AnswerEvent is emitted after an answer is accepted or rejected.
type AnswerEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	Variable string `json:"variable"`
	// NextNodeID is empty when the answer completed the flow or was rejected.
	NextNodeID string `json:"next_node_id,omitempty"`
	Rejected   bool   `json:"rejected,omitempty"`
}

// CompleteEvent is emitted when a session reaches the terminal state.
type CompleteEvent struct {
	EventBase
	Answered int           `json:"answered"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnAnswer    func(context.Context, *AnswerEvent)
	OnComplete  func(context.Context, *CompleteEvent)
}
