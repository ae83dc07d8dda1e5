package handlers

import (
	"context"
	"net/http"
	"time"

	"adminportal/internal/caching"
	"adminportal/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	db        *pgxpool.Pool
	directory *pgxpool.Pool
	cache     caching.CacheService
	archive   services.ArchiveService
}

func NewHealthHandler(db, directory *pgxpool.Pool, cache caching.CacheService, archive services.ArchiveService) *HealthHandler {
	return &HealthHandler{db: db, directory: directory, cache: cache, archive: archive}
}

// Health reports the status of each dependency. Degraded dependencies turn
// the overall status but the endpoint itself always answers.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	check := func(name string, err error) {
		if err != nil {
			checks[name] = "unavailable"
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	check("database", h.db.Ping(ctx))
	check("directory", h.directory.Ping(ctx))
	check("cache", h.cache.Ping(ctx))
	if h.archive != nil {
		check("archive", h.archive.HealthCheck(ctx))
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready is the minimal liveness probe.
func (h *HealthHandler) Ready(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
