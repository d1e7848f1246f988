package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/logging"
	httpAdapter "github.com/aretw0/formflow/pkg/adapters/http"
	"github.com/aretw0/formflow/pkg/adapters/file"
	"github.com/aretw0/formflow/pkg/adapters/loam"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/adapters/openai"
	"github.com/aretw0/formflow/pkg/adapters/redis"
	"github.com/aretw0/formflow/pkg/adapters/sqlite"
	"github.com/aretw0/formflow/pkg/editor"
	"github.com/aretw0/formflow/pkg/observability"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

// App is a fully wired engine with its stores.
type App struct {
	Engine    *formflow.Engine
	Forms     ports.FormLoader
	Editor    *editor.Service // nil when the form source is read-only
	Sessions  *session.Manager
	Responses ports.ResponseStore
	Registry  *prometheus.Registry
	Logger    *slog.Logger

	closers []func() error
}

// NewLogger builds the application logger for a --log-level value.
func NewLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// Build opens the configured stores and creates the engine.
// Call Close when done.
func Build(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{Logger: logger, Registry: prometheus.NewRegistry()}

	if err := app.open(cfg); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open(cfg Config) error {
	var db *sqlite.Store
	if cfg.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		var err error
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
	}

	forms, err := openForms(cfg, db)
	if err != nil {
		return err
	}
	a.Forms = forms

	var (
		states ports.StateStore
		locker ports.DistributedLocker
	)
	switch {
	case cfg.RedisAddr != "":
		rs := redis.New(cfg.RedisAddr, redis.WithTTL(cfg.SessionTTL))
		a.closers = append(a.closers, rs.Client().Close)
		states = rs
		locker = redis.NewLocker(rs.Client(), rs.Prefix())
	case db != nil:
		states = db
	default:
		states = memory.NewStore()
	}
	if len(cfg.EncryptionKey) > 0 {
		states = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    cfg.EncryptionKey,
			FallbackKeys: cfg.FallbackKeys,
		})(states)
	}
	a.Sessions = session.NewManager(states, session.WithLocker(locker), session.WithLogger(a.Logger))

	if db != nil {
		a.Responses = db
	} else {
		a.Responses = memory.NewResponseStore()
	}
	if len(cfg.PIIPatterns) > 0 {
		a.Responses = middleware.NewPIIMiddleware(cfg.PIIPatterns)(a.Responses)
	}

	if err := a.Registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	metrics, err := observability.NewMetrics(a.Registry)
	if err != nil {
		return err
	}

	opts := []formflow.Option{
		formflow.WithLoader(forms),
		formflow.WithLogger(a.Logger),
		formflow.WithResponseStore(a.Responses),
		formflow.WithLifecycleHooks(observability.Chain(metrics.Hooks(), observability.LoggingHooks(a.Logger))),
		formflow.WithExpressionErrorHandler(metrics.ObserveExpressionError),
	}
	if cfg.MaxAnswerLength > 0 {
		opts = append(opts, formflow.WithMaxAnswerLength(cfg.MaxAnswerLength))
	}
	if cfg.Phrase {
		popts := []openai.Option{openai.WithLogger(a.Logger)}
		if cfg.OpenAIModel != "" {
			popts = append(popts, openai.WithModel(cfg.OpenAIModel))
		}
		phraser, err := openai.NewFromEnv(popts...)
		if err != nil {
			return err
		}
		opts = append(opts, formflow.WithPhraser(phraser))
	}

	a.Engine, err = formflow.New(cfg.Dir, opts...)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}

	if store, ok := forms.(ports.FormStore); ok {
		a.Editor = editor.NewService(store,
			editor.New(editor.WithNavigator(a.Engine.Navigator()), editor.WithLogger(a.Logger)),
			locker, a.Logger)
	}
	return nil
}

// OpenForms opens only the form source, for commands that never answer.
func OpenForms(cfg Config) (ports.FormLoader, func() error, error) {
	var db *sqlite.Store
	closer := func() error { return nil }
	if cfg.Forms == FormsSQLite {
		if cfg.SQLitePath == "" {
			return nil, nil, errors.New("the sqlite form source needs --sqlite")
		}
		var err error
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closer = db.Close
	}
	forms, err := openForms(cfg, db)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return forms, closer, nil
}

func openForms(cfg Config, db *sqlite.Store) (ports.FormLoader, error) {
	switch cfg.Forms {
	case "", FormsMarkdown:
		return loam.Open(cfg.Dir)
	case FormsYAML:
		return file.NewFormStore(cfg.Dir)
	case FormsSQLite:
		if db == nil {
			return nil, errors.New("the sqlite form source needs --sqlite")
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown form source %q (want %s, %s or %s)", cfg.Forms, FormsMarkdown, FormsYAML, FormsSQLite)
}

// Handler returns the HTTP API over the app.
func (a *App) Handler() (http.Handler, error) {
	opts := []httpAdapter.Option{
		httpAdapter.WithResponses(a.Responses),
		httpAdapter.WithMetrics(a.Registry),
		httpAdapter.WithLogger(a.Logger),
	}
	if a.Editor != nil {
		opts = append(opts, httpAdapter.WithEditor(a.Editor))
	}
	return httpAdapter.NewHandler(a.Engine, a.Sessions, opts...)
}

// Close releases the stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
