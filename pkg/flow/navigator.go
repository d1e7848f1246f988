package flow

import (
	"log/slog"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/expression"
)

// ExpressionEvaluator runs a custom edge expression against the answer set.
// Implementations must not have side effects.
type ExpressionEvaluator interface {
	Evaluate(source string, answers domain.Answers) (bool, error)
}

// Navigator decides which edges are active and which question comes next.
// It holds no per-session state and is safe for concurrent use.
type Navigator struct {
	expressions ExpressionEvaluator
	logger      *slog.Logger
	onExprError func(edge domain.Edge, err error)
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithExpressionEvaluator replaces the sandboxed expr evaluator.
func WithExpressionEvaluator(e ExpressionEvaluator) Option {
	return func(n *Navigator) {
		n.expressions = e
	}
}

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// OnExpressionError registers a callback for custom expressions that failed
// to evaluate. The edge is still treated as inactive.
func OnExpressionError(fn func(edge domain.Edge, err error)) Option {
	return func(n *Navigator) {
		n.onExprError = fn
	}
}

// NewNavigator creates a Navigator. By default custom expressions run in the
// expr sandbox from package expression.
func NewNavigator(opts ...Option) *Navigator {
	n := &Navigator{}
	for _, opt := range opts {
		opt(n)
	}
	if n.expressions == nil {
		n.expressions = expression.New()
	}
	if n.logger == nil {
		n.logger = logging.NewNop()
	}
	return n
}

var defaultNavigator = NewNavigator()

// IsActive reports whether an edge may be followed given the answers so far.
//
// An edge with neither conditions nor a custom expression is always active.
// A non-empty custom expression takes precedence over the condition list and
// any failure to evaluate it makes the edge inactive. Otherwise the
// conditions are combined with AND, or with OR when the edge's logical
// operator is "or".
func (n *Navigator) IsActive(edge domain.Edge, answers domain.Answers, nodes []domain.Node) bool {
	if edge.Unconditional() {
		return true
	}

	if edge.Data.CustomExpression != "" {
		ok, err := n.expressions.Evaluate(edge.Data.CustomExpression, answers)
		if err != nil {
			n.logger.Warn("custom expression failed", "edge", edge.ID, "error", err)
			if n.onExprError != nil {
				n.onExprError(edge, err)
			}
			return false
		}
		n.logger.Debug("custom expression evaluated", "edge", edge.ID, "result", ok)
		return ok
	}

	or := edge.Data.LogicalOperator == domain.LogicalOr
	for _, c := range edge.Data.Conditions {
		ok := EvaluateCondition(c, answers, nodes)
		n.logger.Debug("condition evaluated",
			"edge", edge.ID,
			"source", c.SourceVariable,
			"operator", c.Operator,
			"result", ok,
		)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

// FindNextNode returns the target of the first active outgoing edge of
// current, in edge-list order. It returns nil when there is no outgoing edge,
// no active one, or the active edge points at a node that does not exist.
// A nil result means the flow is complete.
func (n *Navigator) FindNextNode(current domain.Node, nodes []domain.Node, edges []domain.Edge, answers domain.Answers) *domain.Node {
	for _, e := range edges {
		if e.Source != current.ID {
			continue
		}
		if !n.IsActive(e, answers, nodes) {
			continue
		}
		for i := range nodes {
			if nodes[i].ID == e.Target {
				return &nodes[i]
			}
		}
		n.logger.Warn("active edge points at a missing node", "edge", e.ID, "target", e.Target)
		return nil
	}
	return nil
}

// IsActive evaluates an edge with the default Navigator.
func IsActive(edge domain.Edge, answers domain.Answers, nodes []domain.Node) bool {
	return defaultNavigator.IsActive(edge, answers, nodes)
}

// FindNextNode selects the next question with the default Navigator.
func FindNextNode(current domain.Node, nodes []domain.Node, edges []domain.Edge, answers domain.Answers) *domain.Node {
	return defaultNavigator.FindNextNode(current, nodes, edges, answers)
}
