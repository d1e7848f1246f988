/*
Package dsl builds forms in Go with a fluent API instead of YAML or Markdown files.

It is handy for tests, generated forms and IDE autocompletion.

Example usage:

	b := dsl.New("survey").Name("Survey")

	b.Add("name").
		Text("What's your name?").
		SaveTo("name").
		Required().
		Go("age")

	b.Add("age").
		Ask("How old are you, [name]?", domain.QuestionRating).
		SaveTo("age").
		When("drives", dsl.Cond("age", domain.OpGreaterThanOrEqual, 18))

	b.Add("drives").
		YesNo("Do you drive?").
		SaveTo("drives")

	// The result can be passed to formflow.WithLoader.
	loader, err := b.Build()
*/
package dsl
