package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/ports"
)

const (
	// DefaultPhraseTimeout bounds a single Phraser call.
	DefaultPhraseTimeout = 3 * time.Second
	// DefaultMaxAnswerLength caps text and longText answers, in characters.
	DefaultMaxAnswerLength = 10000
)

// Engine is the response-session driver. It owns no session state: every
// call takes a State and returns a new one, leaving persistence to the caller.
type Engine struct {
	loader        ports.FormLoader
	navigator     *flow.Navigator
	phraser       ports.Phraser
	phraseTimeout time.Duration
	responses     ports.ResponseStore
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	tracer        trace.Tracer
	maxAnswerLen  int
	now           func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithNavigator replaces the default Flow Navigator.
func WithNavigator(n *flow.Navigator) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.navigator = n
		}
	}
}

// WithPhraser enables AI-assisted phrasing of transition messages.
func WithPhraser(p ports.Phraser) EngineOption {
	return func(e *Engine) {
		e.phraser = p
	}
}

// WithPhraseTimeout bounds each phrasing call. Non-positive values keep the default.
func WithPhraseTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.phraseTimeout = d
		}
	}
}

// WithResponseStore records completed sessions.
func WithResponseStore(s ports.ResponseStore) EngineOption {
	return func(e *Engine) {
		e.responses = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer (default: the global provider).
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMaxAnswerLength caps text answers. Non-positive values keep the default.
func WithMaxAnswerLength(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAnswerLen = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine reading forms from loader.
func NewEngine(loader ports.FormLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:        loader,
		phraseTimeout: DefaultPhraseTimeout,
		logger:        logging.NewNop(),
		tracer:        otel.Tracer("github.com/aretw0/formflow/internal/runtime"),
		maxAnswerLen:  DefaultMaxAnswerLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.navigator == nil {
		e.navigator = flow.NewNavigator(flow.WithLogger(e.logger))
	}
	return e
}

// Start creates a session positioned at the form's start question.
// An empty sessionID gets a generated one.
func (e *Engine) Start(ctx context.Context, formID, sessionID string) (*domain.State, error) {
	ctx, span := e.tracer.Start(ctx, "formflow.start", trace.WithAttributes(attribute.String("form.id", formID)))
	defer span.End()

	form, err := e.loadForm(ctx, formID)
	if err != nil {
		return nil, spanError(span, err)
	}
	start := flow.FindStartNode(form.Nodes, form.Edges, form.Settings)
	if start == nil {
		return nil, spanError(span, fmt.Errorf("form %s: %w", formID, domain.ErrEmptyForm))
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state := domain.NewState(sessionID, form.ID, start.ID)
	state.StartedAt = e.now().UTC()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.String("node.id", start.ID))

	e.logger.Info("session started", "form", form.ID, "session", sessionID, "node", start.ID)
	e.emitNodeEnter(ctx, state, start)
	return state, nil
}

// Inspect returns a copy of the form graph.
func (e *Engine) Inspect(ctx context.Context, formID string) (*domain.Form, error) {
	return e.loadForm(ctx, formID)
}

// Submit stores the answer to the current question and advances the session.
// A rejected answer returns a *domain.ValidationError and leaves the state untouched.
func (e *Engine) Submit(ctx context.Context, state *domain.State, answer any) (*domain.State, error) {
	ctx, span := e.tracer.Start(ctx, "formflow.submit", trace.WithAttributes(
		attribute.String("session.id", state.SessionID),
		attribute.String("node.id", state.CurrentNodeID),
	))
	defer span.End()

	if state.Completed() {
		return nil, spanError(span, domain.ErrSessionCompleted)
	}

	form, node, err := e.currentNode(ctx, state)
	if err != nil {
		return nil, spanError(span, err)
	}

	if err := e.validateAnswer(node, answer); err != nil {
		e.emitAnswer(ctx, state, node, "", true)
		return nil, spanError(span, err)
	}

	next := state.Snapshot()
	next.Answers[node.Data.VariableName] = answer

	target := e.navigator.FindNextNode(*node, form.Nodes, form.Edges, next.Answers)
	if target == nil {
		next.Status = domain.StatusCompleted
		next.CurrentNodeID = ""
		e.emitAnswer(ctx, state, node, "", false)
		if err := e.recordResponse(ctx, next); err != nil {
			return nil, spanError(span, err)
		}
		e.logger.Info("session completed", "form", next.FormID, "session", next.SessionID, "answered", len(next.Answers))
		e.emitComplete(ctx, next)
		return next, nil
	}

	next.CurrentNodeID = target.ID
	next.History = append(next.History, target.ID)
	span.SetAttributes(attribute.String("next.id", target.ID))

	e.logger.Debug("answer accepted", "session", next.SessionID, "node", node.ID, "next", target.ID)
	e.emitAnswer(ctx, state, node, target.ID, false)
	e.emitNodeEnter(ctx, next, target)
	return next, nil
}

func (e *Engine) loadForm(ctx context.Context, formID string) (*domain.Form, error) {
	form, err := e.loader.GetForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form %s: %w", formID, err)
	}
	return form, nil
}

func (e *Engine) currentNode(ctx context.Context, state *domain.State) (*domain.Form, *domain.Node, error) {
	form, err := e.loadForm(ctx, state.FormID)
	if err != nil {
		return nil, nil, err
	}
	node, ok := form.NodeByID(state.CurrentNodeID)
	if !ok {
		return nil, nil, fmt.Errorf("node %s in form %s: %w", state.CurrentNodeID, form.ID, domain.ErrNodeNotFound)
	}
	return form, node, nil
}

func (e *Engine) recordResponse(ctx context.Context, state *domain.State) error {
	if e.responses == nil {
		return nil
	}
	resp := domain.Response{
		ID:          uuid.NewString(),
		FormID:      state.FormID,
		SessionID:   state.SessionID,
		Answers:     state.Answers.Clone(),
		CompletedAt: e.now().UTC(),
	}
	if err := e.responses.SaveResponse(ctx, resp); err != nil {
		return fmt.Errorf("failed to record response for session %s: %w", state.SessionID, err)
	}
	return nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
