// Copyright (C) 2026 ScyllaDB

package session

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "keyrequest"
	metricsSubsystem = "session"

	outcomeSuccess     = "success"
	outcomeError       = "error"
	outcomeUnsupported = "unsupported"
)

// Metrics counts requests dispatched through a Registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
}

func newRequestsCounterVec() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Total number of requests dispatched to request processors.",
	}, []string{"session", "kind", "result_type", "outcome"})
}

// NewMetrics returns metrics for the session identified by logPrefix, registered with r.
// Sessions sharing r share one collector and are told apart by the "session" label.
func NewMetrics(r prometheus.Registerer, logPrefix string) (*Metrics, error) {
	requests := newRequestsCounterVec()
	err := r.Register(requests)
	if err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}

		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector registered as %q has unexpected type %T", "requests_total", are.ExistingCollector)
		}
		requests = existing
	}

	curried, err := requests.CurryWith(prometheus.Labels{"session": logPrefix})
	if err != nil {
		return nil, fmt.Errorf("can't curry session label: %w", err)
	}

	return &Metrics{
		requests: curried,
	}, nil
}

func (m *Metrics) observe(kind RequestKind, resultType ResultType, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(kind), string(resultType), outcome).Inc()
}
