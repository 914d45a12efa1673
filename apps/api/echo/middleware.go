package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// roleMiddleware restricts a route to users holding one of the given
// roles. Admins always pass.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
