package domain

import "time"

// Answers maps a variable name to the respondent's answer.
//
// Values are string, a numeric kind, bool, time.Time or nil. A missing key
// and a nil value are treated alike by the evaluators.
type Answers map[string]any

// Clone returns a shallow copy of the answer set.
func (a Answers) Clone() Answers {
	c := make(Answers, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Serializable returns a copy with time values rendered as RFC 3339 strings.
func (a Answers) Serializable() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}
