package auth

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts auth activity events by type and outcome
type MetricsSink struct {
	events *prometheus.CounterVec
}

var _ ActivitySink = (*MetricsSink)(nil)

// NewMetricsSink registers the auth counters with reg. A nil reg uses
// prometheus.DefaultRegisterer. Registering twice reuses the existing vector.
func NewMetricsSink(namespace string, reg prometheus.Registerer) (*MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Total number of authentication events",
		},
		[]string{"event", "code"},
	)

	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		events = existing
	}

	return &MetricsSink{events: events}, nil
}

func (m *MetricsSink) Record(_ context.Context, event ActivityEvent) error {
	code := event.TextCode
	if code == "" {
		code = "OK"
	}
	m.events.WithLabelValues(string(event.EventType), code).Inc()
	return nil
}

// Events exposes the counter vector
func (m *MetricsSink) Events() *prometheus.CounterVec {
	return m.events
}
