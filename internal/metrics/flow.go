package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login-flow Prometheus metrics. Standalone package to avoid import cycles
// between the flow service and HTTP packages.

var (
	LoginsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "idgate_logins_started_total",
		Help: "Authorization redirects issued",
	})

	CallbackOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idgate_callback_outcomes_total",
		Help: "Callback results by stable category (success or error tag)",
	}, []string{"outcome"})

	ConfirmOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idgate_confirm_outcomes_total",
		Help: "CRM confirmation results by stable category",
	}, []string{"outcome"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idgate_provider_request_seconds",
		Help:    "Latency of provider calls (exchange, jwks, userinfo)",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})

	CRMRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idgate_crm_request_seconds",
		Help:    "Latency of CRM calls (search, register, update, direct_login)",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})

	AccountsRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "idgate_crm_accounts_registered_total",
		Help: "New CRM accounts created by this gateway",
	})
)

// Register registers the flow metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LoginsStarted,
		CallbackOutcomes,
		ConfirmOutcomes,
		ProviderRequestDuration,
		CRMRequestDuration,
		AccountsRegistered,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
