package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/formflow/pkg/domain"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	NodeVisits        *prometheus.CounterVec
	Answers           *prometheus.CounterVec
	SessionDuration   *prometheus.HistogramVec
	ExpressionErrors  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_sessions_started_total",
			Help: "Total number of response sessions started",
		}, []string{"form_id"}),
		SessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_sessions_completed_total",
			Help: "Total number of response sessions completed",
		}, []string{"form_id"}),
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_node_visits_total",
			Help: "Total number of question visits",
		}, []string{"form_id", "node_id"}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_answers_total",
			Help: "Total number of submitted answers by outcome",
		}, []string{"form_id", "outcome"}),
		SessionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formflow_session_duration_seconds",
			Help:    "Time from session start to completion",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"form_id"}),
		ExpressionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_expression_errors_total",
			Help: "Custom edge expressions that failed to evaluate",
		}, []string{"edge_id"}),
	}

	for _, c := range []prometheus.Collector{
		m.SessionsStarted, m.SessionsCompleted, m.NodeVisits,
		m.Answers, m.SessionDuration, m.ExpressionErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.FormID, e.NodeID).Inc()
			if e.Initial {
				m.SessionsStarted.WithLabelValues(e.FormID).Inc()
			}
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			outcome := "accepted"
			if e.Rejected {
				outcome = "rejected"
			}
			m.Answers.WithLabelValues(e.FormID, outcome).Inc()
		},
		OnComplete: func(_ context.Context, e *domain.CompleteEvent) {
			m.SessionsCompleted.WithLabelValues(e.FormID).Inc()
			if e.Duration > 0 {
				m.SessionDuration.WithLabelValues(e.FormID).Observe(e.Duration.Seconds())
			}
		},
	}
}

// ObserveExpressionError counts a failed custom expression.
// Its signature matches formflow.WithExpressionErrorHandler.
func (m *Metrics) ObserveExpressionError(edge domain.Edge, _ error) {
	m.ExpressionErrors.WithLabelValues(edge.ID).Inc()
}
