package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"adminportal/internal/common"
	"adminportal/internal/middleware"
	"adminportal/internal/models"
	"adminportal/internal/repositories"
	"adminportal/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users    services.UserService
	resolver *middleware.TenantResolver
}

func NewUserHandler(users services.UserService, resolver *middleware.TenantResolver) *UserHandler {
	return &UserHandler{users: users, resolver: resolver}
}

type createUserRequest struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password"`
	Roles       []string `json:"roles"`
	CompanyCode string   `json:"company_code"`
}

type updateUserRequest struct {
	DisplayName *string  `json:"display_name"`
	Roles       []string `json:"roles"`
	CompanyCode *string  `json:"company_code"`
	IsActive    *bool    `json:"is_active"`
}

// List returns accounts visible to the caller. Non-elevated callers only
// ever see their own tenant, regardless of query parameters.
func (h *UserHandler) List(c echo.Context) error {
	scope := middleware.Scope(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	filter := scope.Filter()
	if scope.Bypass {
		if raw := c.QueryParam("company_code"); raw != "" {
			code, err := common.ValidateUUID(raw, "company_code")
			if err != nil {
				return common.SendValidationError(c, "company_code", err.Error())
			}
			filter = &code
		}
	}

	users, err := h.users.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		log.Printf("ERROR: failed to list users: %v", err)
		return common.SendServerError(c)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *UserHandler) Get(c echo.Context) error {
	scope := middleware.Scope(c)

	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "User")
		}
		log.Printf("ERROR: failed to load user %s: %v", id, err)
		return common.SendServerError(c)
	}

	if !scope.CanAccess(user.CompanyCode) {
		return h.resolver.Deny(c, scope, models.DenialCrossTenantUserDenied, models.JSONB{
			"target_user_id": user.ID.String(),
		})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	scope := middleware.Scope(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	companyCode := uuid.Nil
	if req.CompanyCode != "" {
		code, err := common.ValidateUUID(req.CompanyCode, "company_code")
		if err != nil {
			return common.SendValidationError(c, "company_code", err.Error())
		}
		companyCode = code
	}

	// Non-elevated admins create accounts inside their own tenant only.
	if !scope.Bypass {
		if companyCode == uuid.Nil {
			companyCode = scope.CompanyCode
		} else if companyCode != scope.CompanyCode {
			return h.resolver.Deny(c, scope, models.DenialCrossTenantUserDenied, models.JSONB{
				"requested_company": companyCode.String(),
			})
		}
	}
	if !scope.Bypass && hasElevatedRole(req.Roles) {
		return common.SendForbiddenError(c, "cannot grant elevated roles")
	}

	user, err := h.users.Create(c.Request().Context(), scope.UserID, &services.CreateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Roles:       req.Roles,
		CompanyCode: companyCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return common.SendConflictError(c, "Username already exists")
		case errors.Is(err, services.ErrWeakPassword):
			return common.SendValidationError(c, "password", err.Error())
		case errors.Is(err, services.ErrUnknownCompany):
			return common.SendValidationError(c, "company_code", err.Error())
		default:
			log.Printf("ERROR: failed to create user: %v", err)
			return common.SendServerError(c)
		}
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	scope := middleware.Scope(c)

	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "User")
		}
		log.Printf("ERROR: failed to load user %s: %v", id, err)
		return common.SendServerError(c)
	}
	if !scope.CanAccess(user.CompanyCode) {
		return h.resolver.Deny(c, scope, models.DenialCrossTenantUserDenied, models.JSONB{
			"target_user_id": user.ID.String(),
		})
	}

	input := &services.UpdateUserInput{
		DisplayName: req.DisplayName,
		Roles:       req.Roles,
		IsActive:    req.IsActive,
	}
	if req.CompanyCode != nil {
		code := uuid.Nil
		if *req.CompanyCode != "" {
			code, err = common.ValidateUUID(*req.CompanyCode, "company_code")
			if err != nil {
				return common.SendValidationError(c, "company_code", err.Error())
			}
		}
		// Moving an account between tenants is an elevated operation.
		if !scope.Bypass && code != scope.CompanyCode {
			return h.resolver.Deny(c, scope, models.DenialCrossTenantUserDenied, models.JSONB{
				"target_user_id":    user.ID.String(),
				"requested_company": code.String(),
			})
		}
		input.CompanyCode = &code
	}
	if !scope.Bypass && req.Roles != nil && hasElevatedRole(req.Roles) {
		return common.SendForbiddenError(c, "cannot grant elevated roles")
	}

	updated, err := h.users.Update(c.Request().Context(), scope.UserID, user, input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.SendNotFoundError(c, "User")
		case errors.Is(err, services.ErrUnknownCompany):
			return common.SendValidationError(c, "company_code", err.Error())
		default:
			log.Printf("ERROR: failed to update user %s: %v", id, err)
			return common.SendServerError(c)
		}
	}
	return c.JSON(http.StatusOK, updated)
}

func hasElevatedRole(roles []string) bool {
	return common.HasRole(roles, models.RoleAdmin) || common.HasRole(roles, models.RoleSupervisor)
}
