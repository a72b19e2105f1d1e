// Package metrics defines the Prometheus collectors for money movements.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carson-networks/bank-server/internal/domain"
)

const (
	OperationWithdraw = "withdraw"
	OperationDeposit  = "deposit"
	OperationTransfer = "transfer"

	OutcomeSuccess = "success"
	OutcomeReplay  = "replayed"
)

type Metrics struct {
	MoneyMovements   *prometheus.CounterVec
	MovementDuration *prometheus.HistogramVec
	LimitRejections  *prometheus.CounterVec
}

// New registers the collectors with reg. Tests pass their own registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MoneyMovements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Name:      "money_movements_total",
			Help:      "Money movements by operation and outcome (success, replayed or error kind).",
		}, []string{"operation", "outcome"}),
		MovementDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bank",
			Name:      "money_movement_duration_seconds",
			Help:      "Time from request to committed or rejected outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		LimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Name:      "limit_rejections_total",
			Help:      "Requests rejected by a daily or monthly ceiling.",
		}, []string{"kind", "window"}),
	}
}

// ObserveMovement records one finished operation. A nil receiver is a no-op.
func (m *Metrics) ObserveMovement(operation string, replayed bool, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = string(domain.KindOf(err))
	case replayed:
		outcome = OutcomeReplay
	}
	m.MoneyMovements.WithLabelValues(operation, outcome).Inc()
	m.MovementDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindLimitExceeded {
		m.LimitRejections.WithLabelValues(limitKind(operation), de.Window).Inc()
	}
}

func limitKind(operation string) string {
	if operation == OperationTransfer {
		return "transfer"
	}
	return "withdrawal"
}
