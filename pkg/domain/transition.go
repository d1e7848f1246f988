package domain

// ComparisonOperator is the test a Condition applies between two values.
type ComparisonOperator string

const (
	OpEquals             ComparisonOperator = "equals"
	OpNotEquals          ComparisonOperator = "notEquals"
	OpContains           ComparisonOperator = "contains"
	OpNotContains        ComparisonOperator = "notContains"
	OpGreaterThan        ComparisonOperator = "greaterThan"
	OpLessThan           ComparisonOperator = "lessThan"
	OpGreaterThanOrEqual ComparisonOperator = "greaterThanOrEqual"
	OpLessThanOrEqual    ComparisonOperator = "lessThanOrEqual"
	OpIsEmpty            ComparisonOperator = "isEmpty"
	OpIsNotEmpty         ComparisonOperator = "isNotEmpty"
)

// IsUnary reports whether the operator ignores its right operand.
func (op ComparisonOperator) IsUnary() bool {
	return op == OpIsEmpty || op == OpIsNotEmpty
}

// LogicalOperator combines the results of an edge's conditions.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// TargetKind tells whether Condition.Value is a literal or the name of another variable.
type TargetKind string

const (
	TargetValue    TargetKind = "value"
	TargetVariable TargetKind = "variable"
)

// Condition is one comparison gating an edge.
type Condition struct {
	SourceVariable string             `json:"sourceVariable" yaml:"source" mapstructure:"sourceVariable" validate:"required"`
	Operator       ComparisonOperator `json:"operator" yaml:"operator" mapstructure:"operator" validate:"required,oneof=equals notEquals contains notContains greaterThan lessThan greaterThanOrEqual lessThanOrEqual isEmpty isNotEmpty"`
	// Value is a literal (string, number, bool, time.Time or nil), or a variable
	// name when Type is TargetVariable.
	Value any        `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Type  TargetKind `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=value variable"`
}

// EdgeData holds the activation rules of a transition.
type EdgeData struct {
	Conditions      []Condition     `json:"conditions" yaml:"conditions,omitempty" mapstructure:"conditions" validate:"dive"`
	LogicalOperator LogicalOperator `json:"logicalOperator" yaml:"logical_operator,omitempty" mapstructure:"logicalOperator" validate:"omitempty,oneof=and or"`
	// CustomExpression replaces Conditions when non-empty.
	CustomExpression string `json:"customExpression,omitempty" yaml:"expression,omitempty" mapstructure:"customExpression" validate:"max=500"`
}

// Edge is a directed, conditionally active transition between two questions.
type Edge struct {
	ID     string   `json:"id" yaml:"id" mapstructure:"id"`
	Source string   `json:"source" yaml:"source" mapstructure:"source"`
	Target string   `json:"target" yaml:"target" mapstructure:"target"`
	Data   EdgeData `json:"data" yaml:"data" mapstructure:"data"`
}

// Unconditional reports whether the edge carries neither conditions nor an expression.
func (e Edge) Unconditional() bool {
	return len(e.Data.Conditions) == 0 && e.Data.CustomExpression == ""
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	c := e
	if e.Data.Conditions != nil {
		c.Data.Conditions = append([]Condition(nil), e.Data.Conditions...)
	}
	return c
}
