package runtime

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/ports"
)

// placeholder matches "[variableName]" in question text.
var placeholder = regexp.MustCompile(`\[(\w+)\]`)

// DateLayout is how date answers appear inside interpolated text.
const DateLayout = "January 2, 2006"

// CompletionMessage is shown once a session has no next question.
const CompletionMessage = "Thank you for completing the form!"

// Render returns the actions presenting the current question.
// The boolean result is true once the session is complete.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	ctx, span := e.tracer.Start(ctx, "formflow.render")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", state.SessionID))

	if state.Completed() {
		return []domain.ActionRequest{{
			Type:    domain.ActionSystemMessage,
			Payload: CompletionMessage,
		}}, true, nil
	}

	form, node, err := e.currentNode(ctx, state)
	if err != nil {
		return nil, false, spanError(span, err)
	}

	text := e.phrase(ctx, form, node, state)
	return []domain.ActionRequest{
		{Type: domain.ActionRenderContent, Payload: text},
		{Type: domain.ActionRequestInput, Payload: domain.NewInputRequest(*node)},
	}, false, nil
}

// Interpolate replaces every "[name]" with the formatted answer for name.
// Answers are read as the type of the question that stored them, so a date
// kept as text by a session store still shows long-form.
// Unknown or unanswered names become the empty string.
func Interpolate(text string, answers domain.Answers, nodes []domain.Node) string {
	types := answerTypes(nodes)
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		return FormatTyped(answers[name], types[name])
	})
}

func answerTypes(nodes []domain.Node) map[string]domain.QuestionType {
	types := make(map[string]domain.QuestionType, len(nodes))
	for _, n := range nodes {
		if n.Data.VariableName != "" {
			types[n.Data.VariableName] = n.Data.Type
		}
	}
	return types
}

// FormatTyped formats an answer after normalizing it for its question type.
func FormatTyped(v any, t domain.QuestionType) string {
	if t == domain.QuestionDate && v != nil {
		v = flow.Normalize(v, t)
	}
	return FormatAnswer(v)
}

// FormatAnswer renders an answer for display: dates long-form, booleans as Yes/No.
func FormatAnswer(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(DateLayout)
	case flow.InvalidDate:
		return val.Raw
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case string:
		return val
	}
	return flow.Stringify(v)
}

// phrase builds the question text, optionally led in by the Phraser.
// The literal interpolated question is returned whenever phrasing is off or fails.
func (e *Engine) phrase(ctx context.Context, form *domain.Form, node *domain.Node, state *domain.State) string {
	question := Interpolate(node.Data.Question, state.Answers, form.Nodes)
	if e.phraser == nil || len(state.History) < 2 {
		return question
	}

	req := ports.PhraseRequest{
		FormName: formName(form),
		Question: question,
	}
	if prev, ok := form.NodeByID(state.History[len(state.History)-2]); ok {
		req.PreviousQuestion = Interpolate(prev.Data.Question, state.Answers, form.Nodes)
		req.PreviousAnswer = FormatTyped(state.Answers[prev.Data.VariableName], prev.Data.Type)
	}

	pctx, cancel := context.WithTimeout(ctx, e.phraseTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	// Buffered so a Phraser that ignores pctx can still finish and exit.
	done := make(chan result, 1)
	go func() {
		text, err := e.phraser.Phrase(pctx, req)
		done <- result{text, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			e.logger.Warn("phrasing failed, using literal question", "node", node.ID, "error", res.err)
			return question
		}
		return joinLeadIn(res.text, question)
	case <-pctx.Done():
		e.logger.Warn("phrasing timed out, using literal question", "node", node.ID, "error", pctx.Err())
		return question
	}
}

// joinLeadIn places question after the lead-in. A lead-in that already
// repeats the question has it removed first so it appears once, verbatim.
func joinLeadIn(leadIn, question string) string {
	if strings.Contains(leadIn, question) {
		leadIn = strings.Replace(leadIn, question, "", 1)
	}
	leadIn = strings.Join(strings.Fields(leadIn), " ")
	if leadIn == "" {
		return question
	}
	return leadIn + " " + question
}

func formName(form *domain.Form) string {
	if form.Settings.FormName != "" {
		return form.Settings.FormName
	}
	return form.Name
}
