package domain

import "time"

const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// Role is a capability granted by the auth service.
type Role struct {
	ID   int64  `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Roles is a set of roles, unique by ID. Order carries no meaning.
type Roles []Role

// NewRoles builds a role set, dropping entries that repeat an ID.
func NewRoles(roles ...Role) Roles {
	seen := make(map[int64]struct{}, len(roles))
	out := make(Roles, 0, len(roles))
	for _, r := range roles {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Has reports whether a role with exactly this name is in the set.
func (r Roles) Has(name string) bool {
	for _, role := range r {
		if role.Name == name {
			return true
		}
	}
	return false
}

// TokenClaims is the decoded content of a session token.
type TokenClaims struct {
	SubjectID int64
	Email     string
	ExpiresAt time.Time
	Roles     Roles
}

// ExpiredAt reports whether the claims are no longer usable at now.
func (c TokenClaims) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// TokenStatus classifies a presented token.
type TokenStatus int

const (
	TokenAbsent TokenStatus = iota
	TokenInvalid
	TokenExpired
	TokenValid
)

func (s TokenStatus) String() string {
	switch s {
	case TokenAbsent:
		return "absent"
	case TokenInvalid:
		return "invalid"
	case TokenExpired:
		return "expired"
	case TokenValid:
		return "valid"
	default:
		return "unknown"
	}
}
