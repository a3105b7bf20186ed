package ports

// AccessGuard answers authorization questions about a session token. A
// non-nil error is always domain.ErrTokenExpired.
type AccessGuard interface {
	LacksRequiredRole(token, role string) (bool, error)
	IsOwner(token string, ownerID int64) (bool, error)
}
