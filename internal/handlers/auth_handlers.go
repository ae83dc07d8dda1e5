package handlers

import (
	"errors"
	"log"
	"net/http"

	"adminportal/internal/common"
	"adminportal/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth  services.AuthService
	users services.UserService
}

func NewAuthHandler(auth services.AuthService, users services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates a username/password pair and returns a token pair.
// Every credential failure gets the same 401; an active lockout gets 429
// with Retry-After.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return common.SendValidationError(c, "credentials", "username and password are required")
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		var locked *services.LockoutError
		if errors.As(err, &locked) {
			return common.SendRateLimitError(c, locked.RetryAfter)
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		log.Printf("ERROR: login failed for %q: %v", req.Username, err)
		return common.SendServerError(c)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": result.Tokens,
		"user":   result.User,
	})
}

// Refresh rotates a refresh token and returns a fresh pair. Any rotation
// failure, including reuse detection, collapses into the generic 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	result, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			return common.SendUnauthorizedError(c)
		}
		log.Printf("ERROR: token refresh failed: %v", err)
		return common.SendServerError(c)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": result.Tokens,
		"user":   result.User,
	})
}

// Logout revokes the presented refresh token. Revoking an already-revoked
// token still succeeds; an unknown one is not an error either, so logout
// never leaks token state.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	var userID *uuid.UUID
	if id, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		userID = &id
	}

	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken, c.RealIP(), userID); err != nil {
		log.Printf("ERROR: logout failed: %v", err)
		return common.SendServerError(c)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user's own account.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		log.Printf("ERROR: failed to load account %s: %v", userID, err)
		return common.SendServerError(c)
	}
	return c.JSON(http.StatusOK, user)
}
