package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/domain"
)

// RunOptions configures a terminal session.
type RunOptions struct {
	FormID string
	// SessionID persists the session so a later run can resume it.
	// Without it the session lives only for this run.
	SessionID string
	// Fresh discards a stored session with the same id first.
	Fresh    bool
	Headless bool

	Input    io.Reader
	Output   io.Writer
	Renderer formflow.ContentRenderer
}

// RunSession answers one form over the terminal.
// Typing exit or quit stops early without an error.
func RunSession(ctx context.Context, app *App, opts RunOptions) (*domain.State, error) {
	state, resumed, err := hydrate(ctx, app, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init session: %w", err)
	}
	logSessionStatus(app, opts, state, resumed)

	r := &formflow.Runner{
		Input:    opts.Input,
		Output:   opts.Output,
		Headless: opts.Headless,
		Renderer: opts.Renderer,
	}
	if opts.SessionID != "" {
		r.Persist = func(ctx context.Context, s *domain.State) error {
			return app.Sessions.Save(ctx, opts.SessionID, s)
		}
	}

	final, err := r.Run(ctx, app.Engine, state)
	if err != nil {
		if errors.Is(err, formflow.ErrInterrupted) || errors.Is(err, context.Canceled) {
			printSystemMessage(opts, "Stopped at question '%s'.", final.CurrentNodeID)
			return final, nil
		}
		return final, err
	}
	if !final.Completed() && opts.SessionID != "" {
		printSystemMessage(opts, "Paused at question '%s'. Run again with --session %s to continue.", final.CurrentNodeID, opts.SessionID)
	}
	return final, nil
}

func hydrate(ctx context.Context, app *App, opts RunOptions) (*domain.State, bool, error) {
	if opts.SessionID == "" {
		state, err := app.Engine.Start(ctx, opts.FormID, "")
		return state, false, err
	}

	if opts.Fresh {
		if err := app.Sessions.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, err
		}
	}

	resumed := true
	state, err := app.Sessions.LoadOrStart(ctx, opts.SessionID, func(ctx context.Context, id string) (*domain.State, error) {
		resumed = false
		return app.Engine.Start(ctx, opts.FormID, id)
	})
	if err != nil {
		return nil, false, err
	}
	if state.FormID != opts.FormID {
		return nil, false, fmt.Errorf("session %s belongs to form %s", opts.SessionID, state.FormID)
	}
	return state, resumed, nil
}

func logSessionStatus(app *App, opts RunOptions, state *domain.State, resumed bool) {
	if resumed {
		app.Logger.Info("Session Resumed", "session_id", state.SessionID, "node", state.CurrentNodeID)
		printSystemMessage(opts, "Resuming at question '%s'.", state.CurrentNodeID)
		return
	}
	app.Logger.Info("Session Created", "session_id", state.SessionID, "form", state.FormID)
	if opts.SessionID != "" {
		printSystemMessage(opts, "Session '%s' active.", opts.SessionID)
	}
}

// printSystemMessage writes a status line outside the form's own output.
func printSystemMessage(opts RunOptions, format string, args ...any) {
	if opts.Headless || opts.Output == nil {
		return
	}
	fmt.Fprintf(opts.Output, ">>> %s\n", fmt.Sprintf(format, args...))
}
