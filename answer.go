package formflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/formflow/pkg/domain"
)

// DateLayouts are tried in order when parsing typed dates.
var DateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// ParseAnswer converts typed text into the value a question expects.
// Blank input yields nil, leaving the required check to the engine.
// Choice questions accept an option's text (case-insensitive) or its
// 1-based position.
func ParseAnswer(input string, req domain.InputRequest) (any, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, nil
	}

	switch req.Type {
	case domain.QuestionBoolean:
		switch strings.ToLower(text) {
		case "y", "yes", "true", "1", "sim", "s":
			return true, nil
		case "n", "no", "false", "0", "nao", "não":
			return false, nil
		}
		return nil, invalid(req, "Please answer yes or no")

	case domain.QuestionRating, domain.QuestionSlider:
		n, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return nil, invalid(req, "Please enter a number")
		}
		return n, nil

	case domain.QuestionDate:
		for _, layout := range DateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, nil
			}
		}
		return nil, invalid(req, "Please enter a date as YYYY-MM-DD")

	case domain.QuestionMultipleChoice, domain.QuestionDropdown:
		if len(req.Options) == 0 {
			return text, nil
		}
		for _, opt := range req.Options {
			if strings.EqualFold(opt, text) {
				return opt, nil
			}
		}
		if i, err := strconv.Atoi(text); err == nil && i >= 1 && i <= len(req.Options) {
			return req.Options[i-1], nil
		}
		return nil, invalid(req, "Please pick one of the options")
	}

	// text, longText and media answers are kept verbatim.
	return strings.TrimRight(input, "\r\n"), nil
}

func invalid(req domain.InputRequest, msg string) error {
	return &domain.ValidationError{Field: req.Variable, Message: msg}
}
