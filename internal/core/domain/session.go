package domain

const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// SessionCookieNames lists the cookies every token-issuing response must carry.
var SessionCookieNames = []string{CookieAccessToken, CookieRefreshToken}

// SessionCookies maps a cookie name to its complete Set-Cookie header value.
type SessionCookies map[string]string

// TokenGrant is a token issue or refresh result: the remote outcome plus the
// session cookies to hand to the client.
type TokenGrant struct {
	Outcome AuthOutcome
	Cookies SessionCookies
}
