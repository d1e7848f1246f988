package flow

import (
	"math"
	"reflect"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// IsEmpty reports whether an answer counts as missing: nil or the empty string.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Compare applies op to left and right under the comparison rules of the
// declared question type.
//
// isEmpty and isNotEmpty look only at left. Every other operator is false
// when either operand is nil, including notEquals. Operators that make no
// sense for the type are false.
func Compare(op domain.ComparisonOperator, left, right any, t domain.QuestionType) bool {
	switch op {
	case domain.OpIsEmpty:
		return IsEmpty(left)
	case domain.OpIsNotEmpty:
		return !IsEmpty(left)
	}

	if left == nil || right == nil {
		return false
	}

	l := Normalize(left, t)
	r := Normalize(right, t)

	switch t {
	case domain.QuestionDate:
		return compareDates(op, l, r)
	case domain.QuestionBoolean:
		return compareBooleans(op, l, r)
	case domain.QuestionRating, domain.QuestionSlider:
		return compareNumbers(op, toNumber(l), toNumber(r))
	default:
		return compareText(op, l, r)
	}
}

func compareDates(op domain.ComparisonOperator, l, r any) bool {
	lt, lok := toTime(l)
	rt, rok := toTime(r)
	if !lok || !rok {
		return false
	}
	switch op {
	case domain.OpEquals:
		return lt.Equal(rt)
	case domain.OpNotEquals:
		return !lt.Equal(rt)
	case domain.OpGreaterThan:
		return lt.After(rt)
	case domain.OpLessThan:
		return lt.Before(rt)
	case domain.OpGreaterThanOrEqual:
		return !lt.Before(rt)
	case domain.OpLessThanOrEqual:
		return !lt.After(rt)
	}
	return false
}

func compareBooleans(op domain.ComparisonOperator, l, r any) bool {
	switch op {
	case domain.OpEquals:
		return l == r
	case domain.OpNotEquals:
		return l != r
	}
	return false
}

func compareNumbers(op domain.ComparisonOperator, l, r float64) bool {
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch op {
	case domain.OpEquals:
		return l == r
	case domain.OpNotEquals:
		return l != r
	case domain.OpGreaterThan:
		return l > r
	case domain.OpLessThan:
		return l < r
	case domain.OpGreaterThanOrEqual:
		return l >= r
	case domain.OpLessThanOrEqual:
		return l <= r
	}
	return false
}

func compareText(op domain.ComparisonOperator, l, r any) bool {
	switch op {
	case domain.OpEquals:
		return StrictEqual(l, r)
	case domain.OpNotEquals:
		return !StrictEqual(l, r)
	case domain.OpContains:
		return strings.Contains(Stringify(l), Stringify(r))
	case domain.OpNotContains:
		return !strings.Contains(Stringify(l), Stringify(r))
	}
	return false
}

// StrictEqual is type-aware equality: numbers of any kind compare by value
// (NaN never equals anything), times compare as instants and a string never
// equals a number. Slices and maps are never equal.
func StrictEqual(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := toTime(a); ok {
		bt, ok := toTime(b)
		return ok && at.Equal(bt)
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
