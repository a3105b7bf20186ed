package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// Context keys set by Auth.
const (
	CtxToken     = "token"
	CtxSubjectID = "subject_id"
	CtxEmail     = "email"
	CtxRoles     = "roles"
)

// Auth validates the session token and injects its claims into the context.
// The token is read from the accessToken cookie, falling back to a Bearer
// Authorization header. Expired tokens fail with domain.ErrTokenExpired; any
// other unusable token fails with domain.ErrForbidden.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return domain.ErrForbidden
			}

			valid, err := tokens.IsValid(token)
			if err != nil {
				return err
			}
			if !valid {
				return domain.ErrForbidden
			}

			subjectID, err := tokens.SubjectID(token)
			if err != nil {
				return domain.ErrForbidden
			}
			email, _ := tokens.Email(token)
			roles, _ := tokens.Roles(token)

			c.Set(CtxToken, token)
			c.Set(CtxSubjectID, subjectID)
			c.Set(CtxEmail, email)
			c.Set(CtxRoles, roles)

			return next(c)
		}
	}
}

// TokenFromRequest returns the raw session token or "".
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(domain.CookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
