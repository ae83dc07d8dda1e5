package middleware

import (
	"context"
	"net/http"

	"adminportal/internal/common"
	"adminportal/internal/services"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/google/uuid"
)

// JWT returns the ready-to-use middleware for protected route groups.
func JWT(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(JWTConfig(jwtSecret))
}

// JWTConfig builds the echo-jwt configuration for protected route groups.
// The standard bearer header is tried first; X-Access-Token is the fallback
// for clients that cannot set Authorization.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "header:Authorization:Bearer ,header:X-Access-Token",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.AccessClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*services.AccessClaims)
			if !ok {
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return
			}
			// The claim may legitimately be the zero UUID ("no tenant").
			companyCode, _ := uuid.Parse(claims.CompanyCode)

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, common.CompanyCodeKey, companyCode)
			ctx = context.WithValue(ctx, common.RolesKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
