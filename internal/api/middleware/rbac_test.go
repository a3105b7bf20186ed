package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/service"
)

func newGuard() *service.Guard {
	return service.NewGuard(newValidator())
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxToken, signToken(t, "1", time.Now().Add(time.Hour), domain.RoleAdmin))

	called := false
	handler := RequireRole(newGuard(), domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"no token", "", domain.ErrForbidden},
		{"missing role", signToken(t, "1", time.Now().Add(time.Hour), domain.RoleUser), domain.ErrForbidden},
		{"expired", signToken(t, "1", time.Now().Add(-time.Hour), domain.RoleAdmin), domain.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.Set(CtxToken, tt.token)

			handler := RequireRole(newGuard(), domain.RoleAdmin)(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			if err := handler(c); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireOwnerOr(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		token   string
		wantErr error
		reached bool
	}{
		{"owner", "42", signToken(t, "42", time.Now().Add(time.Hour), domain.RoleUser), nil, true},
		{"admin", "42", signToken(t, "7", time.Now().Add(time.Hour), domain.RoleAdmin), nil, true},
		{"stranger", "42", signToken(t, "7", time.Now().Add(time.Hour), domain.RoleUser), domain.ErrForbidden, false},
		{"expired owner", "42", signToken(t, "42", time.Now().Add(-time.Hour)), domain.ErrTokenExpired, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			c.Set(CtxToken, tt.token)

			reached := false
			handler := RequireOwnerOr(newGuard(), "id", domain.RoleAdmin)(func(c echo.Context) error {
				reached = true
				return nil
			})

			err := handler(c)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if reached != tt.reached {
				t.Fatalf("reached = %v, want %v", reached, tt.reached)
			}
		})
	}
}

func TestRequireOwnerOr_BadParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := RequireOwnerOr(newGuard(), "id", domain.RoleAdmin)(func(c echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
