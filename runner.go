package formflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// Runner drives one session over a line-oriented terminal.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Persist is called after every accepted answer, so hosts can save the session.
	Persist func(ctx context.Context, state *domain.State) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// ErrInterrupted is returned when the respondent types exit or quit.
var ErrInterrupted = errors.New("session interrupted")

// Run renders questions and submits answers until the session completes.
// It returns the last state, which is still active when input ends early.
func (r *Runner) Run(ctx context.Context, engine *Engine, state *domain.State) (*domain.State, error) {
	if r.Input == nil {
		return state, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return state, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	w := r.Output

	if !r.Headless {
		fmt.Fprintln(w, "--- formflow ---")
	}

	for {
		actions, done, err := engine.Render(ctx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}

		var req *domain.InputRequest
		for _, act := range actions {
			switch act.Type {
			case domain.ActionRenderContent, domain.ActionSystemMessage:
				if msg, ok := act.Payload.(string); ok {
					fmt.Fprintln(w, strings.TrimSpace(r.render(msg)))
				}
			case domain.ActionRequestInput:
				if in, ok := act.Payload.(domain.InputRequest); ok {
					req = &in
				}
			}
		}
		if done || req == nil {
			return state, nil
		}
		r.describe(req)

		for {
			fmt.Fprint(w, "> ")
			text, err := lines.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return state, fmt.Errorf("input error: %w", err)
				}
				if text == "" {
					return state, nil
				}
			}
			if t := strings.TrimSpace(text); t == "exit" || t == "quit" {
				fmt.Fprintln(w, "Bye!")
				return state, ErrInterrupted
			}

			answer, err := ParseAnswer(text, *req)
			if err == nil {
				var next *domain.State
				next, err = engine.Submit(ctx, state, answer)
				if err == nil {
					state = next
					break
				}
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return state, err
			}
			fmt.Fprintf(w, "! %s\n", verr.Message)
		}

		if r.Persist != nil {
			if err := r.Persist(ctx, state); err != nil {
				return state, fmt.Errorf("failed to persist session: %w", err)
			}
		}
	}
}

func (r *Runner) render(msg string) string {
	if r.Renderer == nil {
		return msg
	}
	out, err := r.Renderer(msg)
	if err != nil {
		return msg
	}
	return out
}

// describe prints the hints a terminal needs to answer the question.
func (r *Runner) describe(req *domain.InputRequest) {
	if r.Headless {
		return
	}
	w := r.Output
	if req.HelpText != "" {
		fmt.Fprintf(w, "(%s)\n", req.HelpText)
	}
	for i, opt := range req.Options {
		fmt.Fprintf(w, "  %d. %s\n", i+1, opt)
	}
	switch req.Type {
	case domain.QuestionBoolean:
		fmt.Fprintln(w, "  [yes/no]")
	case domain.QuestionDate:
		fmt.Fprintln(w, "  [YYYY-MM-DD]")
	}
	if !req.Required {
		fmt.Fprintln(w, "  (optional, press enter to skip)")
	}
}
