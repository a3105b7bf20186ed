package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/account-service/internal/core/domain"
)

func TestBuildHeader_AddsMissingAttributes(t *testing.T) {
	got, err := BuildHeader("accessToken=abc; HttpOnly; Path=/")
	require.NoError(t, err)
	assert.Equal(t, "accessToken=abc; HttpOnly; Path=/; SameSite=None; Secure; Partitioned", got)
}

func TestBuildHeader_KeepsExistingAttributes(t *testing.T) {
	got, err := BuildHeader("refreshToken=xyz; Max-Age=3600; secure; SameSite=Strict")
	require.NoError(t, err)
	assert.Equal(t, "refreshToken=xyz; Max-Age=3600; secure; SameSite=Strict; HttpOnly; Path=/; Partitioned", got)
}

func TestBuildHeader_Idempotent(t *testing.T) {
	inputs := []string{
		"accessToken=abc",
		"accessToken=abc; HttpOnly; Path=/",
		"refreshToken=a.b.c; Path=/auth; SameSite=None; Secure; Partitioned",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once, err := BuildHeader(in)
			require.NoError(t, err)
			twice, err := BuildHeader(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestParse_RejectsMissingName(t *testing.T) {
	for _, in := range []string{"", "novalue", "=abc; Secure"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestCookie_WithDoesNotMutateReceiver(t *testing.T) {
	c, err := Parse("accessToken=abc; HttpOnly")
	require.NoError(t, err)

	updated := c.With(Attribute{Key: AttrSecure})
	assert.False(t, c.Has(AttrSecure))
	assert.True(t, updated.Has(AttrSecure))
}

func TestExtract_KeepsOnlySessionCookies(t *testing.T) {
	cookies, err := Extract([]string{
		"accessToken=a1; HttpOnly; Path=/",
		"tracking=zzz; Path=/",
		"refreshToken=r1; HttpOnly; Path=/",
	})
	require.NoError(t, err)

	assert.Len(t, cookies, 2)
	assert.Equal(t, "accessToken=a1; HttpOnly; Path=/; SameSite=None; Secure; Partitioned", cookies[domain.CookieAccessToken])
	assert.Equal(t, "refreshToken=r1; HttpOnly; Path=/; SameSite=None; Secure; Partitioned", cookies[domain.CookieRefreshToken])
}

func TestExtract_IgnoresUnparsableForeignCookies(t *testing.T) {
	cookies, err := Extract([]string{
		"accessToken=a",
		"=orphan; Path=/",
		"refreshToken=r",
		"garbage",
	})
	require.NoError(t, err)

	assert.Len(t, cookies, 2)
	assert.NoError(t, ValidateRequired(cookies, domain.SessionCookieNames...))
}

func TestExtract_MalformedSessionCookie(t *testing.T) {
	_, err := Extract([]string{"accessToken; HttpOnly", "refreshToken=r"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestValidateRequired(t *testing.T) {
	full := domain.SessionCookies{
		domain.CookieAccessToken:  "accessToken=a",
		domain.CookieRefreshToken: "refreshToken=r",
	}
	assert.NoError(t, ValidateRequired(full, domain.SessionCookieNames...))

	tests := []struct {
		name    string
		cookies domain.SessionCookies
		missing string
	}{
		{"none", domain.SessionCookies{}, domain.CookieAccessToken},
		{"no refresh", domain.SessionCookies{domain.CookieAccessToken: "accessToken=a"}, domain.CookieRefreshToken},
		{"no access", domain.SessionCookies{domain.CookieRefreshToken: "refreshToken=r"}, domain.CookieAccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.cookies, domain.SessionCookieNames...)
			var missing *domain.MissingRequiredCookieError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.missing, missing.Name)
			assert.ErrorIs(t, err, domain.ErrMissingRequiredCookie)
		})
	}
}
