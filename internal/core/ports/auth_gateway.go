package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// RemoteRegistration is the body sent to the auth service on registration.
// Password must already be a bcrypt hash.
type RemoteRegistration struct {
	Login    string
	Email    string
	Password string
}

// AuthGateway is the only path to the external auth service.
//
// Negative business answers come back as AuthOutcome values. Transport
// failures, non-2xx statuses, malformed bodies and missing session cookies are
// returned as errors and must never be turned into outcomes by callers.
type AuthGateway interface {
	RegisterUser(ctx context.Context, in RemoteRegistration) (domain.AuthOutcome, error)
	ConfirmAccount(ctx context.Context, in domain.ConfirmationRequest) (domain.AuthOutcome, error)
	UnlockAccount(ctx context.Context, in domain.ConfirmationRequest) (domain.AuthOutcome, error)
	ResetPassword(ctx context.Context, in domain.PasswordResetRequest) (domain.AuthOutcome, error)
	UpdatePassword(ctx context.Context, bearer string, in domain.PasswordUpdateRequest) (domain.AuthOutcome, error)
	GenerateToken(ctx context.Context, in domain.AuthByEmailRequest) (*domain.TokenGrant, error)
	RefreshAccess(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
	GetAccount(ctx context.Context, login, email string) (*domain.RemoteAccount, error)
}
