package service

import (
	"strings"

	"github.com/99minutos/account-service/internal/core/ports"
)

var _ ports.AccessGuard = (*Guard)(nil)

// Guard derives authorization decisions from token validity. It fails closed:
// anything short of a valid token lacks every role. Expiry is returned as an
// error so callers can ask the client to refresh.
type Guard struct {
	tokens ports.TokenValidator
}

func NewGuard(tokens ports.TokenValidator) *Guard {
	return &Guard{tokens: tokens}
}

// LacksRequiredRole reports whether token does not grant role. When err is
// non-nil it is domain.ErrTokenExpired and the boolean must be ignored.
func (g *Guard) LacksRequiredRole(token, role string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return true, nil
	}

	valid, err := g.tokens.IsValid(token)
	if err != nil {
		return true, err
	}
	if !valid {
		return true, nil
	}

	roles, err := g.tokens.Roles(token)
	if err != nil {
		return true, nil
	}
	return !roles.Has(role), nil
}

// IsOwner reports whether token is valid and issued to ownerID.
func (g *Guard) IsOwner(token string, ownerID int64) (bool, error) {
	return g.tokens.IsValidFor(token, ownerID)
}
