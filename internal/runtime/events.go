package runtime

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: state.SessionID,
		FormID:    state.FormID,
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.State, node *domain.Node) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase:    e.base(domain.EventNodeEnter, state),
		NodeID:       node.ID,
		QuestionType: node.Data.Type,
		Initial:      len(state.History) == 1,
	})
}

func (e *Engine) emitAnswer(ctx context.Context, state *domain.State, node *domain.Node, nextID string, rejected bool) {
	if e.hooks.OnAnswer == nil {
		return
	}
	e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
		EventBase:  e.base(domain.EventAnswer, state),
		NodeID:     node.ID,
		Variable:   node.Data.VariableName,
		NextNodeID: nextID,
		Rejected:   rejected,
	})
}

func (e *Engine) emitComplete(ctx context.Context, state *domain.State) {
	if e.hooks.OnComplete == nil {
		return
	}
	ev := &domain.CompleteEvent{
		EventBase: e.base(domain.EventComplete, state),
		Answered:  len(state.Answers),
	}
	if !state.StartedAt.IsZero() {
		ev.Duration = ev.Timestamp.Sub(state.StartedAt)
	}
	e.hooks.OnComplete(ctx, ev)
}
