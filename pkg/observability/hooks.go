package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formflow/pkg/domain"
)

// LoggingHooks logs every lifecycle event at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_enter",
				"form_id", e.FormID,
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"type", e.QuestionType,
			)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.InfoContext(ctx, "answer",
				"form_id", e.FormID,
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"next_node_id", e.NextNodeID,
				"rejected", e.Rejected,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.CompleteEvent) {
			logger.InfoContext(ctx, "complete",
				"form_id", e.FormID,
				"session_id", e.SessionID,
				"answered", e.Answered,
				"duration", e.Duration,
			)
		},
	}
}

// Chain calls every set of hooks in order.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter []func(context.Context, *domain.NodeEvent)
	var answer []func(context.Context, *domain.AnswerEvent)
	var complete []func(context.Context, *domain.CompleteEvent)
	for _, h := range all {
		if h.OnNodeEnter != nil {
			enter = append(enter, h.OnNodeEnter)
		}
		if h.OnAnswer != nil {
			answer = append(answer, h.OnAnswer)
		}
		if h.OnComplete != nil {
			complete = append(complete, h.OnComplete)
		}
	}

	var out domain.LifecycleHooks
	if len(enter) > 0 {
		out.OnNodeEnter = func(ctx context.Context, e *domain.NodeEvent) {
			for _, fn := range enter {
				fn(ctx, e)
			}
		}
	}
	if len(answer) > 0 {
		out.OnAnswer = func(ctx context.Context, e *domain.AnswerEvent) {
			for _, fn := range answer {
				fn(ctx, e)
			}
		}
	}
	if len(complete) > 0 {
		out.OnComplete = func(ctx context.Context, e *domain.CompleteEvent) {
			for _, fn := range complete {
				fn(ctx, e)
			}
		}
	}
	return out
}
