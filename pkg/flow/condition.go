package flow

import (
	"github.com/aretw0/formflow/pkg/domain"
)

// EvaluateCondition tests one condition against the answer set.
//
// The left operand is the answer of the condition's source variable, typed by
// the node that declares that variable. An unknown source variable, or an
// unknown variable on the right side, makes the condition false.
func EvaluateCondition(c domain.Condition, answers domain.Answers, nodes []domain.Node) bool {
	source, ok := domain.FindNodeByVariable(nodes, c.SourceVariable)
	if !ok {
		return false
	}

	left := answers[c.SourceVariable]
	t := source.Data.Type

	if c.Operator.IsUnary() {
		return Compare(c.Operator, left, nil, t)
	}

	if name, isName := c.Value.(string); c.Type == domain.TargetVariable && isName {
		if _, ok := domain.FindNodeByVariable(nodes, name); !ok {
			return false
		}
		return Compare(c.Operator, left, answers[name], t)
	}

	return Compare(c.Operator, left, c.Value, t)
}
