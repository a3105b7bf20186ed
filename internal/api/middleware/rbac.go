package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// RequireRole lets the request through only when the session token grants role.
// It must run after Auth.
func RequireRole(guard ports.AccessGuard, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get(CtxToken).(string)
			lacks, err := guard.LacksRequiredRole(token, role)
			if err != nil {
				return err
			}
			if lacks {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireOwnerOr lets the request through when the token subject equals the
// numeric path parameter, or when the token grants role.
func RequireOwnerOr(guard ports.AccessGuard, param, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID, err := strconv.ParseInt(c.Param(param), 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
			}

			token, _ := c.Get(CtxToken).(string)
			owner, err := guard.IsOwner(token, ownerID)
			if err != nil {
				return err
			}
			if owner {
				return next(c)
			}

			lacks, err := guard.LacksRequiredRole(token, role)
			if err != nil {
				return err
			}
			if lacks {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
