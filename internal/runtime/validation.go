package runtime

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/formflow/pkg/domain"
)

func (e *Engine) validateAnswer(node *domain.Node, answer any) error {
	field := node.Data.VariableName

	if node.Data.Required && blank(answer) {
		return &domain.ValidationError{Field: field, Message: "This field is required"}
	}

	switch node.Data.Type {
	case domain.QuestionText, domain.QuestionLongText:
		if s, ok := answer.(string); ok && utf8.RuneCountInString(s) > e.maxAnswerLen {
			return &domain.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("Answer must be at most %d characters", e.maxAnswerLen),
			}
		}
	}
	return nil
}

func blank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}
