package domain

// operatorsByType mirrors the operators the editor offers for each question type.
// The engine never enforces this table; it exists for editor UIs and linting.
var operatorsByType = map[QuestionType][]ComparisonOperator{
	QuestionText: {
		OpEquals, OpNotEquals, OpContains, OpNotContains, OpIsEmpty, OpIsNotEmpty,
	},
	QuestionBoolean: {
		OpEquals, OpNotEquals,
	},
	QuestionRating: {
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual,
	},
}

var defaultOperators = []ComparisonOperator{OpEquals, OpNotEquals}

// OperatorsFor returns the operators offered for a question type.
func OperatorsFor(t QuestionType) []ComparisonOperator {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = defaultOperators
	}
	return append([]ComparisonOperator(nil), ops...)
}

// OperatorAllowed reports whether op is offered for questions of type t.
func OperatorAllowed(t QuestionType, op ComparisonOperator) bool {
	for _, allowed := range OperatorsFor(t) {
		if allowed == op {
			return true
		}
	}
	return false
}

