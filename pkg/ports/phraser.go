package ports

import "context"

// PhraseRequest carries what a Phraser may use to introduce the next question.
type PhraseRequest struct {
	FormName string
	// Question is the interpolated question about to be asked.
	Question string
	// PreviousQuestion and PreviousAnswer are empty for the first question.
	PreviousQuestion string
	PreviousAnswer   string
}

// Phraser produces a short conversational lead-in for a question.
// Callers treat every error, and any slow call, as "use the literal question".
type Phraser interface {
	Phrase(ctx context.Context, req PhraseRequest) (string, error)
}
