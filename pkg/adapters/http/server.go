package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/presentation/graph"
	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/editor"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

//go:embed openapi.yaml
var rawSpec []byte

// Spec parses and validates the embedded OpenAPI document.
func Spec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// Engine defines what the HTTP server needs from the form engine.
type Engine interface {
	ports.FormEngine
	Forms(ctx context.Context) ([]string, error)
}

// Server serves forms, the editor and response sessions.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	editor    *editor.Service
	responses ports.ResponseStore
	gatherer  prometheus.Gatherer
	spec      *openapi3.T
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEditor mounts the editing routes backed by svc.
func WithEditor(svc *editor.Service) Option {
	return func(s *Server) {
		s.editor = svc
	}
}

// WithResponses exposes completed responses of each form.
func WithResponses(store ports.ResponseStore) Option {
	return func(s *Server) {
		s.responses = store
	}
}

// WithMetrics serves the gatherer's collectors on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
// Sessions are kept in the manager's store between requests.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	spec, err := Spec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		spec:     spec,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/forms", func(r chi.Router) {
		r.Get("/", s.ListForms)
		if s.editor != nil {
			r.Post("/", s.CreateForm)
		}
		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", s.GetForm)
			r.Get("/graph", s.GetGraph)
			r.Post("/sessions", s.StartSession)
			if s.responses != nil {
				r.Get("/responses", s.ListResponses)
			}
			if s.editor != nil {
				s.editorRoutes(r)
			}
		})
	})

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/answers", s.SubmitAnswer)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>FormFlow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// SessionResponse is the body of every session endpoint.
type SessionResponse struct {
	State   *domain.State          `json:"state"`
	Actions []domain.ActionRequest `json:"actions"`
	Done    bool                   `json:"done"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "formflow-http",
		"version":     formflow.Version,
		"api_version": apiVersion,
	})
}

// ListForms handles the GET /forms request.
func (s *Server) ListForms(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Forms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetForm handles the GET /forms/{formID} request.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.engine.Inspect(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// GetGraph handles the GET /forms/{formID}/graph request.
// With ?session=<id> the session's path is highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := s.engine.Inspect(ctx, chi.URLParam(r, "formID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		state, err := s.sessions.Load(ctx, id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		overlay = graph.OverlayFromState(state)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(form, overlay))
}

// ListResponses handles the GET /forms/{formID}/responses request.
func (s *Server) ListResponses(w http.ResponseWriter, r *http.Request) {
	resps, err := s.responses.ListResponses(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if resps == nil {
		resps = []domain.Response{}
	}
	writeJSON(w, http.StatusOK, resps)
}

type startRequest struct {
	SessionID string `json:"session_id"`
}

// StartSession handles the POST /forms/{formID}/sessions request.
// Starting an existing session id resumes it.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "formID")

	var body startRequest
	if r.ContentLength != 0 {
		if err := s.decode(r, "StartRequest", &body); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	state, err := s.sessions.LoadOrStart(ctx, body.SessionID, func(ctx context.Context, sessionID string) (*domain.State, error) {
		return s.engine.Start(ctx, formID, sessionID)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if state.FormID != formID {
		s.writeError(w, fmt.Errorf("session %s belongs to form %s: %w", state.SessionID, state.FormID, errConflict))
		return
	}

	s.logger.Info("session started", "session_id", state.SessionID, "form_id", formID)
	s.writeSession(w, r, http.StatusCreated, state)
}

// GetSession handles the GET /sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, state)
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitRequest struct {
	Answer any     `json:"answer"`
	Input  *string `json:"input"`
}

// SubmitAnswer handles the POST /sessions/{sessionID}/answers request.
// "input" is typed text parsed for the current question; otherwise
// "answer" is recorded as sent.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var body submitRequest
	if err := s.decode(r, "SubmitRequest", &body); err != nil {
		s.writeError(w, err)
		return
	}

	state, err := s.sessions.Update(ctx, sessionID, func(state *domain.State) (*domain.State, error) {
		answer := body.Answer
		if body.Input != nil && !state.Completed() {
			parsed, err := s.parseInput(ctx, state, *body.Input)
			if err != nil {
				return nil, err
			}
			answer = parsed
		}
		return s.engine.Submit(ctx, state, answer)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, state)
}

func (s *Server) parseInput(ctx context.Context, state *domain.State, input string) (any, error) {
	form, err := s.engine.Inspect(ctx, state.FormID)
	if err != nil {
		return nil, err
	}
	node, ok := form.NodeByID(state.CurrentNodeID)
	if !ok {
		return nil, fmt.Errorf("current question %s: %w", state.CurrentNodeID, domain.ErrNodeNotFound)
	}
	return formflow.ParseAnswer(input, domain.NewInputRequest(*node))
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, state *domain.State) {
	actions, done, err := s.engine.Render(r.Context(), state)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, SessionResponse{State: state, Actions: actions, Done: done})
}

// -- Helpers --

var (
	errBadRequest = errors.New("bad request")
	errConflict   = errors.New("conflict")
)

// decode reads a JSON body, checks it against the named component schema
// and unmarshals it into dst.
func (s *Server) decode(r *http.Request, schema string, dst any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if ref, ok := s.spec.Components.Schemas[schema]; ok && ref.Value != nil {
		if err := ref.Value.VisitJSON(generic); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type errorResponse struct {
	Error  string           `json:"error"`
	Fields validator.Errors `json:"fields,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	var fields validator.Errors
	var answerErr *domain.ValidationError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidPatch):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrFormNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCycle),
		errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, domain.ErrDuplicateVariable),
		errors.Is(err, domain.ErrFormExists),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, errConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmptyForm):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &fields):
		status = http.StatusUnprocessableEntity
		resp.Fields = fields
	case errors.As(err, &answerErr):
		status = http.StatusUnprocessableEntity
		resp.Fields = validator.Errors{{Field: answerErr.Field, Rule: "answer", Message: answerErr.Message}}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
