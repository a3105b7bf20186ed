package ports

import "github.com/99minutos/account-service/internal/core/domain"

// TokenValidator decodes session tokens. Only expiry is reported as an error
// by the validity checks; absent, malformed and foreign tokens are plain false.
type TokenValidator interface {
	Check(token string) domain.TokenStatus
	IsValid(token string) (bool, error)
	IsValidFor(token string, subjectID int64) (bool, error)
	SubjectID(token string) (int64, error)
	Email(token string) (string, error)
	Roles(token string) (domain.Roles, error)
}
