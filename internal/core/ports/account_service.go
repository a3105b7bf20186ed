package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AccountService is the use-case surface the transport layer calls.
type AccountService interface {
	Register(ctx context.Context, req *domain.RegistrationRequest) (domain.AuthOutcome, error)
	Confirm(ctx context.Context, req domain.ConfirmationRequest) (domain.AuthOutcome, error)
	Unlock(ctx context.Context, req domain.ConfirmationRequest) (domain.AuthOutcome, error)
	ResetPassword(ctx context.Context, req domain.PasswordResetRequest) (domain.AuthOutcome, error)
	UpdatePassword(ctx context.Context, token string, req domain.PasswordUpdateRequest) (domain.AuthOutcome, error)
	IssueToken(ctx context.Context, req domain.AuthByEmailRequest) (*domain.TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
	LookupRemoteAccount(ctx context.Context, login, email string) (*domain.RemoteAccount, error)
	FindAccount(ctx context.Context, id int64) (*domain.Account, error)
}
