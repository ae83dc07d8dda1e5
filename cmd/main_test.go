package main

import (
	"testing"

	"adminportal/internal/config"
	"adminportal/internal/handlers"
	"adminportal/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes_PathTable(t *testing.T) {
	e := echo.New()
	cfg := &config.Config{JWTSecret: "route-table-test-secret-0123456789"}
	resolver := middleware.NewTenantResolver(nil)

	registerRoutes(e, cfg, routeHandlers{
		auth:      handlers.NewAuthHandler(nil, nil),
		account:   handlers.NewAccountHandler(nil),
		users:     handlers.NewUserHandler(nil, resolver),
		companies: handlers.NewCompanyHandler(nil, nil, resolver),
		audit:     handlers.NewAuditHandler(nil, resolver),
		health:    handlers.NewHealthHandler(nil, nil, nil, nil),
	}, resolver, middleware.NewRateLimiter(nil))

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	// Password changes live under the account surface, not the auth one.
	assert.True(t, registered["POST /api/account/change-password"])
	assert.False(t, registered["POST /api/auth/change-password"])

	for _, route := range []string{
		"GET /health",
		"GET /health/ready",
		"GET /metrics",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/auth/me",
		"GET /api/users",
		"POST /api/users",
		"GET /api/users/:id",
		"PUT /api/users/:id",
		"GET /api/companies",
		"GET /api/companies/directory",
		"GET /api/companies/:code",
		"PUT /api/companies/:code",
		"GET /api/audit/actions",
	} {
		assert.True(t, registered[route], route)
	}
}
