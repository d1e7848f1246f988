package dsl

import "github.com/aretw0/formflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a question.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Ask sets the question text and its type.
// The text may reference earlier answers as [variable].
func (n *NodeBuilder) Ask(question string, t domain.QuestionType) *NodeBuilder {
	n.node.Data.Question = question
	n.node.Data.Type = t
	return n
}

// Text is a single-line text question.
func (n *NodeBuilder) Text(question string) *NodeBuilder {
	return n.Ask(question, domain.QuestionText)
}

// YesNo is a boolean question.
func (n *NodeBuilder) YesNo(question string) *NodeBuilder {
	return n.Ask(question, domain.QuestionBoolean)
}

// Choice is a multiple choice question with the given options.
func (n *NodeBuilder) Choice(question string, options ...string) *NodeBuilder {
	n.node.Data.Options = options
	return n.Ask(question, domain.QuestionMultipleChoice)
}

// SaveTo specifies the variable the answer is recorded under.
func (n *NodeBuilder) SaveTo(variable string) *NodeBuilder {
	n.node.Data.VariableName = variable
	return n
}

// Required rejects empty answers.
func (n *NodeBuilder) Required() *NodeBuilder {
	n.node.Data.Required = true
	return n
}

// Help sets the hint shown below the question.
func (n *NodeBuilder) Help(text string) *NodeBuilder {
	n.node.Data.HelpText = text
	return n
}

// At places the question on the editor canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Go adds an unconditional transition to the target question.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.EdgeData{})
	return n
}

// When adds a transition taken when every condition holds.
func (n *NodeBuilder) When(target string, conds ...domain.Condition) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.EdgeData{Conditions: conds, LogicalOperator: domain.LogicalAnd})
	return n
}

// WhenAny adds a transition taken when at least one condition holds.
func (n *NodeBuilder) WhenAny(target string, conds ...domain.Condition) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.EdgeData{Conditions: conds, LogicalOperator: domain.LogicalOr})
	return n
}

// Expr adds a transition guarded by a custom expression.
func (n *NodeBuilder) Expr(target, expression string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.EdgeData{CustomExpression: expression})
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}

// Cond compares an answer against a literal value.
func Cond(variable string, op domain.ComparisonOperator, value any) domain.Condition {
	return domain.Condition{SourceVariable: variable, Operator: op, Value: value}
}

// CondVar compares an answer against another answer.
func CondVar(variable string, op domain.ComparisonOperator, other string) domain.Condition {
	return domain.Condition{SourceVariable: variable, Operator: op, Type: domain.TargetVariable, Value: other}
}
