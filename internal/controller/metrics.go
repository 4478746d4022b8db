package controller

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
)

const (
	gateAuthentication = "authentication"
	gateAuthorization  = "authorization"
)

// GateMetrics counts gate decisions by gate and outcome.  The outcome is
// "allowed" or the error kind that stopped the request.
type GateMetrics struct {
	Decisions *prometheus.CounterVec
}

// NewGateMetrics registers the decision counter with reg, reusing an
// already registered collector of the same name.
func NewGateMetrics(reg prometheus.Registerer) (*GateMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memo_auth",
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Authentication and authorization gate decisions partitioned by gate and outcome.",
	}, []string{"gate", "outcome"})

	if err := reg.Register(decisions); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register gate collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing gate collector has unexpected type %T", already.ExistingCollector)
		}
		decisions = existing
	}
	return &GateMetrics{Decisions: decisions}, nil
}

func (m *GateMetrics) observe(gate string, err error) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.Decisions.WithLabelValues(gate, outcome).Inc()
}
