package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_decisions_total",
		Help: "Session verification outcomes by state.",
	}, []string{"state"})

	signIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sign_in_total",
		Help: "Sign-in attempts by outcome.",
	}, []string{"outcome"})
)
