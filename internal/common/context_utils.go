package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	UsernameKey    contextKey = "username"
	CompanyCodeKey contextKey = "company_code"
	RolesKey       contextKey = "roles"
)

// CorrelationHeader is set on every response and echoed into error payloads.
const CorrelationHeader = "X-Correlation-ID"

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	Error struct {
		Code          string            `json:"code"`
		Message       string            `json:"message"`
		Details       map[string]string `json:"details,omitempty"`
		CorrelationID string            `json:"correlation_id,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds the standardized error envelope.
func CreateErrorResponse(c echo.Context, code, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	if c != nil {
		resp.Error.CorrelationID = c.Response().Header().Get(CorrelationHeader)
	}
	return &resp
}

// SendValidationError sends a 400 with a field-level detail map.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{field: message}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(c, "VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a 400 without field details.
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(c, "CLIENT_ERROR", message, nil))
}

// SendUnauthorizedError sends the generic 401. The message never
// distinguishes unknown users from wrong passwords.
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse(c, "UNAUTHORIZED", "Invalid credentials", nil))
}

// SendForbiddenError sends a 403 with a machine-readable denial reason.
func SendForbiddenError(c echo.Context, reason string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse(c, "FORBIDDEN", reason, nil))
}

// SendNotFoundError sends a 404 for the named resource.
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse(c, "NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendConflictError sends a 409.
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse(c, "CONFLICT", message, nil))
}

// SendRateLimitError sends a 429 with a Retry-After header.
func SendRateLimitError(c echo.Context, retryAfter time.Duration) error {
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds()+0.5)))
	}
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse(c, "RATE_LIMITED", "Too many requests", nil))
}

// SendServerError sends a generic 500. Internal detail must never reach the
// client; callers log the underlying error with the correlation id.
func SendServerError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse(c, "SERVER_ERROR", "An unexpected error occurred", nil))
}

// ValidateUUID parses a path or query UUID with a field-specific error.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaginationParams clamps pagination parameters.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidateDateRange rejects inverted or unreasonably large ranges.
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}
	if endDate.Sub(startDate) > 366*24*time.Hour {
		return fmt.Errorf("date range cannot exceed 1 year")
	}
	return nil
}

// GetUserIDFromContext extracts the authenticated user ID.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUsernameFromContext extracts the authenticated username.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetCompanyCodeFromContext extracts the caller's tenant code. A uuid.Nil
// value means the claim was present but empty ("no tenant assigned").
func GetCompanyCodeFromContext(ctx context.Context) (uuid.UUID, bool) {
	code, ok := ctx.Value(CompanyCodeKey).(uuid.UUID)
	return code, ok
}

// GetRolesFromContext extracts the caller's role claims.
func GetRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(RolesKey).([]string)
	return roles, ok
}

// HasRole reports case-insensitive membership in a role slice.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
