package handlers

import (
	"errors"
	"log"
	"net/http"

	"adminportal/internal/common"
	"adminportal/internal/services"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	users services.UserService
}

func NewAccountHandler(users services.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword swaps the caller's own password. All refresh tokens of the
// account are revoked on success, so every other session ends.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return common.SendValidationError(c, "password", "current_password and new_password are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return common.SendValidationError(c, "confirm_password", "password confirmation does not match")
	}

	revoked, err := h.users.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword, c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			return common.SendUnauthorizedError(c)
		case errors.Is(err, services.ErrSamePassword):
			return common.SendValidationError(c, "new_password", err.Error())
		case errors.Is(err, services.ErrWeakPassword):
			return common.SendValidationError(c, "new_password", err.Error())
		default:
			log.Printf("ERROR: password change failed for %s: %v", userID, err)
			return common.SendServerError(c)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "password changed",
		"sessions_revoked": revoked,
	})
}
