package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lectio/lectio/pkg/utils"
)

// AdminJWTMiddleware guards the trigger routes: a valid bearer token with
// the admin role, nothing else gets through.
func (mw *MiddlewareManager) AdminJWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearerHeader := c.Request().Header.Get("Authorization")
			if bearerHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			headerParts := strings.Split(bearerHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "Bearer") {
				mw.logger.Warnf("auth middleware: malformed authorization header, RequestID: %s", utils.GetRequestID(c))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			claims, err := utils.ValidateToken(headerParts[1], mw.cfg.Server.JwtSecretKey)
			if err != nil {
				mw.logger.Warnf("auth middleware: %v, RequestID: %s", err, utils.GetRequestID(c))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			if claims.Role != utils.RoleAdmin {
				mw.logger.Warnf("auth middleware: subject %s lacks admin role, RequestID: %s", claims.Subject, utils.GetRequestID(c))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}

			c.Set("subject", claims.Subject)
			return next(c)
		}
	}
}
