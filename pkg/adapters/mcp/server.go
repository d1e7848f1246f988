package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/presentation/graph"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

// SessionResponse aligns with the HTTP API and provides a unified structure across adapters.
type SessionResponse struct {
	State   *domain.State          `json:"state,omitempty" jsonschema_description:"The session after the call"`
	Actions []domain.ActionRequest `json:"actions" jsonschema_description:"What to show the respondent next"`
	Done    bool                   `json:"done" jsonschema_description:"True once the form is complete"`
}

// FormsResponse lists the available forms.
type FormsResponse struct {
	Forms []string `json:"forms" jsonschema_description:"Form ids"`
}

// FormResponse describes one form.
type FormResponse struct {
	Form    *domain.Form `json:"form" jsonschema_description:"The form graph"`
	Mermaid string       `json:"mermaid" jsonschema_description:"Mermaid flowchart of the form"`
}

// Engine defines the interface required by the MCP server to drive forms.
type Engine interface {
	ports.FormEngine
	Forms(ctx context.Context) ([]string, error)
}

// Server wraps the form engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
// Sessions live in the manager's store, so an agent can resume them by id.
func NewServer(engine Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("formflow-mcp", formflow.Version),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_forms",
		mcp.WithDescription("List the ids of every available form."),
		mcp.WithOutputSchema[FormsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListForms))

	s.mcpServer.AddTool(mcp.NewTool("inspect_form",
		mcp.WithDescription("Get a form's questions, transitions and a Mermaid flowchart."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
		mcp.WithOutputSchema[FormResponse](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start answering a form, or resume the session with the given id."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
		mcp.WithString("session_id", mcp.Description("Session id to resume (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("render",
		mcp.WithDescription("Show the current question of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Answer the current question. Booleans accept yes/no, choices accept the option text or its number, dates use YYYY-MM-DD."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The answer as typed text")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))
}

// Handler methods for structured tools

func (s *Server) handleListForms(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormsResponse, error) {
	ids, err := s.engine.Forms(ctx)
	if err != nil {
		return FormsResponse{}, fmt.Errorf("list forms failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return FormsResponse{Forms: ids}, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResponse, error) {
	formID, _ := args["form_id"].(string)
	form, err := s.engine.Inspect(ctx, formID)
	if err != nil {
		return FormResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return FormResponse{Form: form, Mermaid: graph.GenerateMermaid(form, nil)}, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	formID, _ := args["form_id"].(string)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state, err := s.sessions.LoadOrStart(ctx, sessionID, func(ctx context.Context, id string) (*domain.State, error) {
		return s.engine.Start(ctx, formID, id)
	})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	if state.FormID != formID {
		return SessionResponse{}, fmt.Errorf("session %s belongs to form %s", sessionID, state.FormID)
	}
	return s.view(ctx, state)
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return s.view(ctx, state)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	input, _ := args["input"].(string)

	state, err := s.sessions.Update(ctx, sessionID, func(state *domain.State) (*domain.State, error) {
		if state.Completed() {
			return nil, domain.ErrSessionCompleted
		}
		form, err := s.engine.Inspect(ctx, state.FormID)
		if err != nil {
			return nil, err
		}
		node, ok := form.NodeByID(state.CurrentNodeID)
		if !ok {
			return nil, fmt.Errorf("current question %s: %w", state.CurrentNodeID, domain.ErrNodeNotFound)
		}
		answer, err := formflow.ParseAnswer(input, domain.NewInputRequest(*node))
		if err != nil {
			return nil, err
		}
		return s.engine.Submit(ctx, state, answer)
	})
	if err != nil {
		s.logger.Debug("MCP submit rejected", "session_id", sessionID, "err", err)
		return SessionResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return s.view(ctx, state)
}

func (s *Server) view(ctx context.Context, state *domain.State) (SessionResponse, error) {
	actions, done, err := s.engine.Render(ctx, state)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return SessionResponse{State: state, Actions: actions, Done: done}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("formflow://forms", "Available Forms",
		mcp.WithResourceDescription("Ids of every form the engine can run"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadForms)
}

func (s *Server) handleReadForms(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.engine.Forms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "formflow://forms",
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt("fill-form",
		mcp.WithPromptDescription("Guide a respondent through a form one question at a time"),
		mcp.WithArgument("form_id", mcp.RequiredArgument(), mcp.ArgumentDescription("Form to fill")),
	), s.handleFillPrompt)
}

func (s *Server) handleFillPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	formID := request.Params.Arguments["form_id"]
	if formID == "" {
		return nil, fmt.Errorf("form_id is required")
	}

	text := fmt.Sprintf(`You are helping a person fill in the form %q.

Call start_session with form_id %q, then ask the person each question exactly as returned in the RENDER_CONTENT action.
Send their reply with submit. If submit fails with a validation message, explain it and ask again.
Stop when the response says done is true and thank them.`, formID, formID)

	return mcp.NewGetPromptResult(
		"fill-form",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
