package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/formflow/pkg/domain"
)

// InvalidDate is the normalized form of text that could not be read as a date.
// Every comparison against it is false.
type InvalidDate struct {
	Raw string
}

// dateLayouts are tried in order when text is normalized for a date question.
// Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Normalize coerces an answer to the representation used when comparing
// values of the declared question type. It never fails: text that cannot be
// coerced yields NaN (numeric types) or InvalidDate (dates).
func Normalize(value any, t domain.QuestionType) any {
	switch t {
	case domain.QuestionRating, domain.QuestionSlider:
		if s, ok := value.(string); ok {
			return ParseNumber(s)
		}
		return value
	case domain.QuestionDate:
		if s, ok := value.(string); ok {
			return ParseDate(s)
		}
		return value
	case domain.QuestionBoolean:
		if s, ok := value.(string); ok {
			return strings.EqualFold(s, "true")
		}
		return Truthy(value)
	default:
		return value
	}
}

// ParseNumber reads text the way a loosely typed form would: surrounding
// whitespace is ignored, blank text is zero, and anything else that is not
// a number is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	// ParseFloat also accepts spellings such as "inf" and "NaN".
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

// ParseDate reads text as a point in time, returning InvalidDate on failure.
func ParseDate(s string) any {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return InvalidDate{Raw: s}
}

// Truthy applies loose truthiness: nil, false, zero, NaN and "" are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case InvalidDate:
		return true
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// toFloat converts numeric kinds without parsing text.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// toNumber converts any operand to a number for rating and slider comparisons.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case string:
		return ParseNumber(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case time.Time:
		return float64(x.UnixMilli())
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return math.NaN()
}

// toTime converts a normalized operand to a time for date comparisons.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	}
	return time.Time{}, false
}

// Stringify renders a value as text for substring tests.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case InvalidDate:
		return "Invalid Date"
	case json.Number:
		return x.String()
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			if p == nil {
				continue
			}
			parts[i] = Stringify(p)
		}
		return strings.Join(parts, ",")
	}
	if f, ok := toFloat(v); ok {
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
