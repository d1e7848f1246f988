package formflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
)

// ExampleNew_memory runs a two-question form from an in-memory store.
func ExampleNew_memory() {
	loader, err := memory.NewFromNodes("greeting",
		[]domain.Node{
			{ID: "1", Data: domain.NodeData{Question: "What's your name?", Type: domain.QuestionText, VariableName: "name", Required: true}},
			{ID: "2", Data: domain.NodeData{Question: "Nice to meet you, [name]. Are you new here?", Type: domain.QuestionBoolean, VariableName: "new"}},
		},
		[]domain.Edge{{ID: "e1", Source: "1", Target: "2"}},
	)
	if err != nil {
		log.Fatal(err)
	}

	engine, err := formflow.New("", formflow.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := engine.Start(ctx, "greeting", "demo")
	if err != nil {
		log.Fatal(err)
	}

	for _, answer := range []any{"Ada", true} {
		actions, _, err := engine.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(actions[0].Payload)

		state, err = engine.Submit(ctx, state, answer)
		if err != nil {
			log.Fatal(err)
		}
	}

	actions, done, _ := engine.Render(ctx, state)
	fmt.Println(actions[0].Payload, done)
	// Output:
	// What's your name?
	// Nice to meet you, Ada. Are you new here?
	// Thank you for completing the form! true
}
