/*
Package formflow runs conditional, graph-shaped forms.

A form is a directed acyclic graph of questions. Each edge may carry
conditions over earlier answers (or a custom boolean expression); after every
answer the engine follows the first active outgoing edge, and the session is
complete when none is active.

# Concept

The engine is stateless: every call takes a domain.State and returns a new
one, so the host decides where sessions live (memory, Redis, SQLite) and how
questions are shown (terminal, HTTP, MCP). Forms are read through a
ports.FormLoader; by default a Loam repository of Markdown/YAML documents.

# Usage

	eng, err := formflow.New("./forms")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "onboarding", "")
	if err != nil {
		log.Fatal(err)
	}

	for {
		actions, done, err := eng.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		for _, act := range actions {
			log.Println("Action:", act.Type, act.Payload)
		}
		if done {
			break
		}
		state, err = eng.Submit(ctx, state, "Ada")
		if err != nil {
			log.Fatal(err)
		}
	}

Runner wraps the same loop for line-oriented terminals, and ParseAnswer
turns typed text into the value a question expects.
*/
package formflow
