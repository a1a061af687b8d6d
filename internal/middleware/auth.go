package middleware

import (
	"net/http"
	"strings"

	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const userContextKey = "user"

// Authenticate validates the bearer token and stores the claims in the
// request context
func Authenticate(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing Authorization header"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid Authorization format"})
			}

			// Validate the token
			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			// Store the claims in the context for later use
			c.Set(userContextKey, claims)
			log.Debug("Token validated",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// AdminOnly gates a route to authenticated admin users. Must run after
// Authenticate.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := UserFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
		}
		if !claims.IsAdmin() {
			logger.FromContext(c).Warn("Admin-only route denied",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin only"})
		}
		return next(c)
	}
}

// UserFromContext retrieves the authenticated claims from the context
func UserFromContext(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get(userContextKey).(*jwtutil.UserClaims)
	return claims, ok
}
