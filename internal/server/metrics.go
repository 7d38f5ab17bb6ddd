package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// Registered once per process on the default registry.
var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: config.MetricCalculations,
		Help: config.MetricCalculationsHlp,
	}, []string{config.MetricLabelDirection, config.MetricLabelOutcome})

	fieldErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: config.MetricRejections,
		Help: config.MetricRejectionsHlp,
	}, []string{config.MetricLabelField, config.MetricLabelCode})
)

func recordSuccess(dir engine.Direction) {
	calculationsTotal.WithLabelValues(dir.String(), config.OutcomeOK).Inc()
}

func recordRejection(dir engine.Direction, errs engine.FieldErrors) {
	calculationsTotal.WithLabelValues(dir.String(), config.OutcomeRejected).Inc()
	for _, e := range errs {
		fieldErrorsTotal.WithLabelValues(e.Field, string(e.Code)).Inc()
	}
}
