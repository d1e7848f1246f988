package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

// Mask replaces answers whose variable name matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ResponseStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks recorded answers whose
// variable names match any of the patterns. Live sessions are untouched, so
// interpolation and branching still see the real values.
func NewPIIMiddleware(patternStrings []string) ResponseMiddleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ResponseStore) ports.ResponseStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) SaveResponse(ctx context.Context, resp domain.Response) error {
	// Copy so the caller's answer set is not masked in place.
	resp.Answers = resp.Answers.Clone()
	maskAnswers(resp.Answers, m.patterns)
	return m.next.SaveResponse(ctx, resp)
}

func (m *piiMiddleware) ListResponses(ctx context.Context, formID string) ([]domain.Response, error) {
	return m.next.ListResponses(ctx, formID)
}

func maskAnswers(answers domain.Answers, patterns []*regexp.Regexp) {
	for k, v := range answers {
		if v == nil {
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				answers[k] = Mask
				break
			}
		}
	}
}
