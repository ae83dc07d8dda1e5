package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"}, // success, failed, locked_out
	)

	TokenRotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rotations_total",
			Help: "Refresh token rotations by result.",
		},
		[]string{"result"}, // success, invalid, reuse_detected, expired, inactive_user
	)

	TenantDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tenant_denials_total",
			Help: "Tenant isolation denials by reason.",
		},
		[]string{"reason"},
	)

	TokensRevokedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Refresh tokens revoked by reason.",
		},
		[]string{"reason"},
	)
)

// Init registers the auth metrics with the default registry.
func Init() {
	prometheus.MustRegister(LoginsTotal, TokenRotationsTotal, TenantDenialsTotal, TokensRevokedTotal)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
