// Package expression evaluates custom edge expressions in a restricted sandbox.
//
// Expressions are written in the expr language (github.com/expr-lang/expr).
// Only the answer set is in scope; the result must be a boolean. For
// compatibility with expressions authored for the web editor, the strict
// comparison operators === and !== are accepted as == and !=, and the
// identifiers null and undefined resolve to nil unless an answer shadows them.
package expression

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/formflow/pkg/domain"
)

// DefaultMaxLength matches the editor's limit on custom expressions.
const DefaultMaxLength = 500

var (
	// ErrEmptyExpression is returned for a blank expression.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrTooLong is returned when the source exceeds the configured length.
	ErrTooLong = errors.New("expression is too long")
)

// nilAliases are identifiers bound to nil when no answer of that name exists.
var nilAliases = []string{"null", "undefined"}

// Evaluator compiles and runs boolean expressions against an answer set.
// It is safe for concurrent use.
type Evaluator struct {
	maxLength int
	builtins  bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxLength overrides the maximum accepted source length (in bytes).
func WithMaxLength(n int) Option {
	return func(e *Evaluator) {
		e.maxLength = n
	}
}

// WithoutBuiltins removes expr's builtin function library from scope,
// leaving only operators and literals.
func WithoutBuiltins() Option {
	return func(e *Evaluator) {
		e.builtins = false
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		maxLength: DefaultMaxLength,
		builtins:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source with answers as its only variables.
// Any failure (syntax, undefined variable, type mismatch, runtime panic) is returned as an error.
func (e *Evaluator) Evaluate(source string, answers domain.Answers) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = fmt.Errorf("expression panicked: %v", r)
		}
	}()

	program, env, err := e.compile(source, answers)
	if err != nil {
		return false, err
	}

	out, err := vm.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run expression: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", out)
	}
	return b, nil
}

func (e *Evaluator) compile(source string, answers domain.Answers) (*vm.Program, map[string]any, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		return nil, nil, ErrEmptyExpression
	}
	if e.maxLength > 0 && len(src) > e.maxLength {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(src), e.maxLength)
	}

	env := make(map[string]any, len(answers)+len(nilAliases))
	for _, alias := range nilAliases {
		env[alias] = nil
	}
	for k, v := range answers {
		env[k] = v
	}

	opts := []expr.Option{expr.Env(env), expr.AsBool()}
	if !e.builtins {
		opts = append(opts, expr.DisableAllBuiltins())
	}
	program, err := expr.Compile(Rewrite(src), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("compile expression: %w", err)
	}
	return program, env, nil
}

// Rewrite translates strict equality operators outside string literals.
func Rewrite(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteByte(src[i])
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '=', '!':
			if strings.HasPrefix(src[i+1:], "==") {
				b.WriteByte(c)
				b.WriteByte('=')
				i += 2
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Variables lists the free identifiers referenced by source, sorted.
// It only parses; no answers are needed.
func Variables(source string) ([]string, error) {
	tree, err := parser.Parse(Rewrite(strings.TrimSpace(source)))
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}

	c := &identCollector{names: map[string]struct{}{}, locals: map[string]struct{}{}}
	ast.Walk(&tree.Node, c)

	out := make([]string, 0, len(c.names))
	for name := range c.names {
		if _, local := c.locals[name]; local {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type identCollector struct {
	names  map[string]struct{}
	locals map[string]struct{}
}

func (c *identCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		for _, alias := range nilAliases {
			if n.Value == alias {
				return
			}
		}
		c.names[n.Value] = struct{}{}
	case *ast.VariableDeclaratorNode:
		c.locals[n.Name] = struct{}{}
	}
}
