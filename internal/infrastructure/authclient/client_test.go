package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/pkg/logger"
)

const testApp = "account-service"

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, AppID: testApp, Timeout: time.Second}, zerolog.Nop()), &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testHash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegisterUser_SendsBodyAndHeaders(t *testing.T) {
	hash := testHash(t)
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, testApp, r.Header.Get(HeaderRequestingApp))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"login": "alice", "email": "alice@x.com", "password": hash}, body)

		writeJSON(w, http.StatusCreated, domain.Succeeded(domain.ResultRegistered))
	})

	out, err := c.RegisterUser(context.Background(), ports.RemoteRegistration{Login: "alice", Email: "alice@x.com", Password: hash})
	require.NoError(t, err)
	assert.Equal(t, domain.Succeeded(domain.ResultRegistered), out)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestRegisterUser_Preconditions(t *testing.T) {
	hash := testHash(t)
	tests := []struct {
		name string
		in   ports.RemoteRegistration
		want domain.AuthResultType
	}{
		{"invalid email", ports.RemoteRegistration{Login: "alice", Email: "not-an-email", Password: hash}, domain.ResultInvalidEmail},
		{"empty email", ports.RemoteRegistration{Login: "alice", Password: hash}, domain.ResultInvalidEmail},
		{"raw password", ports.RemoteRegistration{Login: "alice", Email: "alice@x.com", Password: "s3cret-pass"}, domain.ResultInvalidPassword},
		{"truncated hash", ports.RemoteRegistration{Login: "alice", Email: "alice@x.com", Password: hash[:40]}, domain.ResultInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			})

			out, err := c.RegisterUser(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, domain.Failed(tt.want), out)
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestRegisterUser_RemoteRejection(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "type": "LoginTaken"})
	})

	out, err := c.RegisterUser(context.Background(), ports.RemoteRegistration{Login: "alice", Email: "alice@x.com", Password: testHash(t)})
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("LoginTaken"), out)
}

func TestOutcome_EmptyFailureTypeIsNormalized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
	})

	out, err := c.ResetPassword(context.Background(), domain.PasswordResetRequest{Email: "alice@x.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.Failed(domain.ResultUnspecified), out)
}

func TestRequestIDIsPropagated(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(HeaderRequestID))
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultPasswordReset))
	})

	ctx := logger.WithRequestID(context.Background(), zerolog.Nop(), "req-42")
	_, err := c.ResetPassword(ctx, domain.PasswordResetRequest{Email: "alice@x.com"})
	require.NoError(t, err)
}

func TestConfirmAndUnlock_Routes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		call   func(*Client) (domain.AuthOutcome, error)
	}{
		{"confirm", http.MethodPost, "/auth/confirm", func(c *Client) (domain.AuthOutcome, error) {
			return c.ConfirmAccount(context.Background(), domain.ConfirmationRequest{Email: "alice@x.com", Code: "123456"})
		}},
		{"unlock", http.MethodPatch, "/auth/unlock", func(c *Client) (domain.AuthOutcome, error) {
			return c.UnlockAccount(context.Background(), domain.ConfirmationRequest{Email: "alice@x.com", Code: "123456"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "123456", body["code"])
				assert.Equal(t, "alice@x.com", body["email"])
				writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultConfirmed))
			})

			out, err := tt.call(c)
			require.NoError(t, err)
			assert.True(t, out.Success)
		})
	}
}

func TestConfirmAccount_InvalidEmailShortCircuits(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	out, err := c.ConfirmAccount(context.Background(), domain.ConfirmationRequest{Email: "bad", Code: "1"})
	require.NoError(t, err)
	assert.Equal(t, domain.Failed(domain.ResultInvalidEmail), out)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNonSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "type": "AccountLocked"})
	})

	_, err := c.UnlockAccount(context.Background(), domain.ConfirmationRequest{Email: "alice@x.com", Code: "1"})
	var statusErr *domain.RemoteStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.Equal(t, "AccountLocked", statusErr.Reason)
	assert.Equal(t, opUnlock, statusErr.Operation)
	assert.ErrorIs(t, err, domain.ErrRemoteStatus)
}

func TestNonSuccessStatus_UnparsableBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := c.ResetPassword(context.Background(), domain.PasswordResetRequest{Email: "alice@x.com"})
	var statusErr *domain.RemoteStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Empty(t, statusErr.Reason)
}

func TestMalformedSuccessBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.ResetPassword(context.Background(), domain.PasswordResetRequest{Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, AppID: testApp, Timeout: time.Second}, zerolog.Nop())
	_, err := c.ResetPassword(context.Background(), domain.PasswordResetRequest{Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrAuthTransport)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(Config{BaseURL: srv.URL, AppID: testApp, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	_, err := c.ResetPassword(context.Background(), domain.PasswordResetRequest{Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrAuthTransport)
}

func TestUpdatePassword_SendsBearer(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/auth/password", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"oldPassword": "old-pass", "newPassword": "new-pass-1"}, body)

		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultPasswordUpdated))
	})

	out, err := c.UpdatePassword(context.Background(), "tok-123", domain.PasswordUpdateRequest{OldPassword: "old-pass", NewPassword: "new-pass-1"})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestGenerateToken_NormalizesCookies(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/token", r.URL.Path)
		w.Header().Add("Set-Cookie", "accessToken=abc; HttpOnly; Path=/")
		w.Header().Add("Set-Cookie", "refreshToken=def; Max-Age=3600")
		w.Header().Add("Set-Cookie", "tracking=zzz")
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultTokenGenerated))
	})

	grant, err := c.GenerateToken(context.Background(), domain.AuthByEmailRequest{Email: "alice@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, grant.Outcome.Success)
	assert.Equal(t, domain.SessionCookies{
		"accessToken":  "accessToken=abc; HttpOnly; Path=/; SameSite=None; Secure; Partitioned",
		"refreshToken": "refreshToken=def; Max-Age=3600; HttpOnly; Path=/; SameSite=None; Secure; Partitioned",
	}, grant.Cookies)
}

func TestGenerateToken_IgnoresUnparsableForeignCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "accessToken=a")
		w.Header().Add("Set-Cookie", "refreshToken=r")
		w.Header().Add("Set-Cookie", "=orphan; Path=/")
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultTokenGenerated))
	})

	grant, err := c.GenerateToken(context.Background(), domain.AuthByEmailRequest{Email: "alice@x.com", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Len(t, grant.Cookies, 2)
	assert.Equal(t, "accessToken=a; HttpOnly; Path=/; SameSite=None; Secure; Partitioned", grant.Cookies[domain.CookieAccessToken])
}

func TestGenerateToken_MalformedSessionCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "accessToken")
		w.Header().Add("Set-Cookie", "refreshToken=r")
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultTokenGenerated))
	})

	grant, err := c.GenerateToken(context.Background(), domain.AuthByEmailRequest{Email: "alice@x.com", Password: "pw"})
	assert.Nil(t, grant)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerateToken_MissingCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "accessToken=abc")
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultTokenGenerated))
	})

	grant, err := c.GenerateToken(context.Background(), domain.AuthByEmailRequest{Email: "alice@x.com", Password: "pw"})
	assert.Nil(t, grant)
	var missing *domain.MissingRequiredCookieError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.CookieRefreshToken, missing.Name)
}

func TestGenerateToken_RejectedSkipsCookies(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "type": "WrongPassword"})
	})

	grant, err := c.GenerateToken(context.Background(), domain.AuthByEmailRequest{Email: "alice@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("WrongPassword"), grant.Outcome)
	assert.Empty(t, grant.Cookies)
}

func TestRefreshAccess_SendsRefreshCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		cookie, err := r.Cookie(domain.CookieRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "r-1", cookie.Value)

		w.Header().Add("Set-Cookie", "accessToken=a2")
		w.Header().Add("Set-Cookie", "refreshToken=r2")
		writeJSON(w, http.StatusOK, domain.Succeeded(domain.ResultTokenRefreshed))
	})

	grant, err := c.RefreshAccess(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Len(t, grant.Cookies, 2)
}

func TestRefreshAccess_EmptyTokenShortCircuits(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	grant, err := c.RefreshAccess(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, grant.Outcome.Success)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestGetAccount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("login"))
		assert.Equal(t, "alice@x.com", r.URL.Query().Get("email"))
		writeJSON(w, http.StatusOK, map[string]any{
			"id":    42,
			"login": "alice",
			"email": "alice@x.com",
			"roles": []map[string]any{{"id": 1, "name": "ROLE_USER"}},
		})
	})

	account, err := c.GetAccount(context.Background(), "alice", "alice@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 42, account.ID)
	assert.True(t, account.Roles.Has(domain.RoleUser))
}

func TestGetAccount_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"type": "AccountNotFound"})
		})
		_, err := c.GetAccount(context.Background(), "alice", "alice@x.com")
		assert.ErrorIs(t, err, domain.ErrRemoteStatus)
	})

	t.Run("missing id", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"login": "alice"})
		})
		_, err := c.GetAccount(context.Background(), "alice", "alice@x.com")
		assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
	})
}
