package formflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/runtime"
	loamAdapter "github.com/aretw0/formflow/pkg/adapters/loam"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/expression"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime       *runtime.Engine
	navigator     *flow.Navigator
	loader        ports.FormLoader
	evaluator     flow.ExpressionEvaluator
	onExprError   func(domain.Edge, error)
	phraser       ports.Phraser
	phraseTimeout time.Duration
	responses     ports.ResponseStore
	hooks         domain.LifecycleHooks
	maxAnswerLen  int
	logger        *slog.Logger
	Name          string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom FormLoader, bypassing the default Loam initialization.
func WithLoader(l ports.FormLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithExpressionEvaluator replaces the sandbox used for custom edge expressions.
func WithExpressionEvaluator(eval flow.ExpressionEvaluator) Option {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithExpressionErrorHandler is called for every custom expression that fails
// to evaluate. The edge is still treated as inactive.
func WithExpressionErrorHandler(fn func(edge domain.Edge, err error)) Option {
	return func(e *Engine) {
		e.onExprError = fn
	}
}

// WithPhraser enables AI-assisted transitions between questions.
func WithPhraser(p ports.Phraser) Option {
	return func(e *Engine) {
		e.phraser = p
	}
}

// WithPhraseTimeout bounds each phrasing call (default 3s).
func WithPhraseTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.phraseTimeout = d
	}
}

// WithResponseStore records the answers of completed sessions.
func WithResponseStore(s ports.ResponseStore) Option {
	return func(e *Engine) {
		e.responses = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxAnswerLength caps text answers (default 10000 characters).
func WithMaxAnswerLength(n int) Option {
	return func(e *Engine) {
		e.maxAnswerLen = n
	}
}

// New initializes a new Engine.
// By default, it reads forms from a Loam repository at the given path.
// If WithLoader option is provided, dir can be empty and Loam is skipped.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		loader, err := loamAdapter.Open(dir)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			eng.Name = filepath.Base(abs)
		}
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("repo", eng.Name)
	}
	if eng.evaluator == nil {
		eng.evaluator = expression.New()
	}

	navOpts := []flow.Option{
		flow.WithExpressionEvaluator(eng.evaluator),
		flow.WithLogger(eng.logger),
	}
	if eng.onExprError != nil {
		navOpts = append(navOpts, flow.OnExpressionError(eng.onExprError))
	}
	eng.navigator = flow.NewNavigator(navOpts...)
	eng.runtime = runtime.NewEngine(eng.loader,
		runtime.WithNavigator(eng.navigator),
		runtime.WithPhraser(eng.phraser),
		runtime.WithPhraseTimeout(eng.phraseTimeout),
		runtime.WithResponseStore(eng.responses),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxAnswerLength(eng.maxAnswerLen),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Start creates a session positioned at the form's start question.
// An empty sessionID gets a generated one.
func (e *Engine) Start(ctx context.Context, formID, sessionID string) (*domain.State, error) {
	return e.runtime.Start(ctx, formID, sessionID)
}

// Render returns the actions for the current question, or the completion
// message and done=true once the session is complete.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	return e.runtime.Render(ctx, state)
}

// Submit validates an answer to the current question and advances the session.
func (e *Engine) Submit(ctx context.Context, state *domain.State, answer any) (*domain.State, error) {
	return e.runtime.Submit(ctx, state, answer)
}

// Inspect returns the full form definition for visualization or introspection tools.
func (e *Engine) Inspect(ctx context.Context, formID string) (*domain.Form, error) {
	return e.runtime.Inspect(ctx, formID)
}

// Forms lists the ids of every form the loader knows.
func (e *Engine) Forms(ctx context.Context) ([]string, error) {
	return e.loader.ListForms(ctx)
}

// Loader returns the underlying FormLoader used by the engine.
func (e *Engine) Loader() ports.FormLoader {
	return e.loader
}

// Navigator returns the Flow Navigator shared by every session of this engine.
func (e *Engine) Navigator() *flow.Navigator {
	return e.navigator
}

var _ ports.FormEngine = (*Engine)(nil)
