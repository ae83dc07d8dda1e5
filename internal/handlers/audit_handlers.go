package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"adminportal/internal/common"
	"adminportal/internal/middleware"
	"adminportal/internal/models"
	"adminportal/internal/services"

	"github.com/labstack/echo/v4"
)

type AuditHandler struct {
	logs     services.ActionLogService
	resolver *middleware.TenantResolver
}

func NewAuditHandler(logs services.ActionLogService, resolver *middleware.TenantResolver) *AuditHandler {
	return &AuditHandler{logs: logs, resolver: resolver}
}

// ListActions queries the audit trail. Scoped callers are pinned to their
// own tenant; asking for another company's trail is itself a logged denial.
func (h *AuditHandler) ListActions(c echo.Context) error {
	scope := middleware.Scope(c)

	filters := &models.ActionLogFilters{}

	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "user_id")
		if err != nil {
			return common.SendValidationError(c, "user_id", err.Error())
		}
		filters.UserID = &id
	}
	if raw := c.QueryParam("company_code"); raw != "" {
		code, err := common.ValidateUUID(raw, "company_code")
		if err != nil {
			return common.SendValidationError(c, "company_code", err.Error())
		}
		if !scope.CanAccess(code) {
			return h.resolver.Deny(c, scope, models.DenialCrossTenantAuditDenied, models.JSONB{
				"requested_company": code.String(),
			})
		}
		filters.CompanyCode = &code
	}
	if filters.CompanyCode == nil {
		filters.CompanyCode = scope.Filter()
	}

	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.SendValidationError(c, "start_date", "must be RFC3339")
		}
		filters.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.SendValidationError(c, "end_date", "must be RFC3339")
		}
		filters.EndDate = &t
	}

	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	filters.Limit, filters.Offset = common.ValidatePaginationParams(filters.Limit, filters.Offset)

	if err := h.logs.ValidateFilters(filters); err != nil {
		return common.SendValidationError(c, "filters", err.Error())
	}

	entries, err := h.logs.List(c.Request().Context(), filters)
	if err != nil {
		log.Printf("ERROR: failed to list action logs: %v", err)
		return common.SendServerError(c)
	}
	if entries == nil {
		entries = []*models.ActionLog{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"actions": entries,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}
