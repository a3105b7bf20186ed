package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/api/middleware"
	"github.com/99minutos/account-service/internal/core/domain"
)

// ctxToken returns the session token injected by the Auth middleware.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.CtxToken).(string)
	if token == "" {
		return "", domain.ErrForbidden
	}
	return token, nil
}
