package handlers

import (
	"errors"
	"log"
	"net/http"

	"adminportal/internal/common"
	"adminportal/internal/middleware"
	"adminportal/internal/models"
	"adminportal/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CompanyHandler struct {
	companies services.CompanyService
	actionLog services.ActionLogService
	resolver  *middleware.TenantResolver
}

func NewCompanyHandler(companies services.CompanyService, actionLog services.ActionLogService, resolver *middleware.TenantResolver) *CompanyHandler {
	return &CompanyHandler{companies: companies, actionLog: actionLog, resolver: resolver}
}

// List returns directory entries with per-tenant account counts. Scoped
// callers get exactly their own company.
func (h *CompanyHandler) List(c echo.Context) error {
	scope := middleware.Scope(c)

	companies, err := h.companies.List(c.Request().Context(), scope.Filter())
	if err != nil {
		log.Printf("ERROR: failed to list companies: %v", err)
		return common.SendServerError(c)
	}
	if companies == nil {
		companies = []*models.CompanyStatus{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"companies": companies})
}

// Directory returns the raw directory listing, elevated callers only.
func (h *CompanyHandler) Directory(c echo.Context) error {
	scope := middleware.Scope(c)
	if !scope.Bypass {
		return h.resolver.Deny(c, scope, models.DenialCrossTenantCompanyDenied, nil)
	}

	companies, err := h.companies.Directory(c.Request().Context())
	if err != nil {
		log.Printf("ERROR: failed to read company directory: %v", err)
		return common.SendServerError(c)
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"companies": companies})
}

func (h *CompanyHandler) Get(c echo.Context) error {
	scope := middleware.Scope(c)

	code, err := common.ValidateUUID(c.Param("code"), "company code")
	if err != nil {
		return common.SendValidationError(c, "code", err.Error())
	}
	if !scope.CanAccess(code) {
		return h.resolver.Deny(c, scope, models.DenialCrossTenantCompanyDenied, models.JSONB{
			"requested_company": code.String(),
		})
	}

	company, err := h.companies.GetByCode(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			return common.SendNotFoundError(c, "Company")
		}
		log.Printf("ERROR: failed to load company %s: %v", code, err)
		return common.SendServerError(c)
	}
	return c.JSON(http.StatusOK, company)
}

// Update always refuses: the directory is maintained by an external system
// and this portal only reads it. The attempt is still audit-logged.
func (h *CompanyHandler) Update(c echo.Context) error {
	scope := middleware.Scope(c)

	h.actionLog.Record(c.Request().Context(), actorID(scope), models.ActionAccessDenied, models.JSONB{
		"reason": models.DenialReadOnlyDirectory,
		"method": c.Request().Method,
		"path":   c.Path(),
		"ip":     c.RealIP(),
	})
	return common.SendConflictError(c, "company directory is read-only")
}

func actorID(scope *middleware.TenantScope) *uuid.UUID {
	if scope == nil || scope.UserID == uuid.Nil {
		return nil
	}
	id := scope.UserID
	return &id
}
