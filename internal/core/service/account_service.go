package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/session"
	"github.com/99minutos/account-service/internal/metrics"
)

// AccountService coordinates the auth service with local persistence.
type AccountService struct {
	gateway    ports.AuthGateway
	accounts   ports.AccountRepository
	catalog    ports.CatalogRepository
	ledger     ports.ReconciliationLog
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

func NewAccountService(
	gateway ports.AuthGateway,
	accounts ports.AccountRepository,
	catalog ports.CatalogRepository,
	ledger ports.ReconciliationLog,
	bcryptCost int,
	log zerolog.Logger,
) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		gateway:    gateway,
		accounts:   accounts,
		catalog:    catalog,
		ledger:     ledger,
		validate:   validator.New(),
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        log,
	}
}

// Register creates the identity in the auth service and then mirrors it
// locally.
//
// Once the remote registration succeeded it is never undone. If the local
// side cannot be completed the caller gets NotCreatedLocally and the identity
// is written to the reconciliation ledger for manual repair.
func (s *AccountService) Register(ctx context.Context, req *domain.RegistrationRequest) (domain.AuthOutcome, error) {
	outcome, err := s.register(ctx, req)

	label := string(outcome.Type)
	if err != nil {
		label = "error"
	}
	metrics.RegistrationsTotal.WithLabelValues(label).Inc()

	return outcome, err
}

func (s *AccountService) register(ctx context.Context, req *domain.RegistrationRequest) (domain.AuthOutcome, error) {
	if req == nil || s.validate.Struct(req) != nil {
		return domain.Failed(domain.ResultBadRequestInstance), nil
	}

	password, err := s.encryptedPassword(req)
	if err != nil {
		s.log.Debug().Err(err).Str("login", req.Login).Msg("password could not be hashed")
		return domain.Failed(domain.ResultBadRequestInstance), nil
	}

	remote, err := s.gateway.RegisterUser(ctx, ports.RemoteRegistration{
		Login:    req.Login,
		Email:    req.Email,
		Password: password,
	})
	if err != nil {
		return domain.AuthOutcome{}, fmt.Errorf("register: %w", err)
	}
	if !remote.Success {
		s.log.Info().
			Str("login", req.Login).
			Str("type", string(remote.Type)).
			Msg("remote registration rejected")
		return domain.Failed(domain.ResultBadResponseInstance), nil
	}

	// The remote identity now exists; the local half runs even if the caller
	// goes away.
	localCtx := context.WithoutCancel(ctx)
	subjectID, err := s.bootstrap(localCtx, req)
	if err != nil {
		s.flagUnreconciled(localCtx, req, subjectID, err)
		return domain.Failed(domain.ResultNotCreatedLocally), nil
	}

	return remote, nil
}

// bootstrap fetches the canonical identity and persists the local aggregate.
// It returns the remote subject id whenever it is known.
func (s *AccountService) bootstrap(ctx context.Context, req *domain.RegistrationRequest) (int64, error) {
	remote, err := s.gateway.GetAccount(ctx, req.Login, req.Email)
	if err != nil {
		return 0, fmt.Errorf("fetch remote account: %w", err)
	}

	account, err := s.buildAccount(ctx, remote, req)
	if err != nil {
		return remote.ID, err
	}

	stored, err := s.accounts.Create(ctx, account)
	if err != nil {
		return remote.ID, fmt.Errorf("persist account: %w", err)
	}
	if stored == nil {
		return remote.ID, fmt.Errorf("%w: nothing stored for remote id %d", domain.ErrIdentityMismatch, remote.ID)
	}
	if stored.ID != remote.ID {
		return remote.ID, fmt.Errorf("%w: local id %d, remote id %d", domain.ErrIdentityMismatch, stored.ID, remote.ID)
	}

	s.log.Info().
		Int64("subject_id", stored.ID).
		Str("login", stored.Login).
		Int("achievements", len(stored.Achievements)).
		Msg("account registered")

	return remote.ID, nil
}

func (s *AccountService) flagUnreconciled(ctx context.Context, req *domain.RegistrationRequest, subjectID int64, cause error) {
	metrics.ReconciliationBacklog.Inc()

	s.log.Error().
		Err(cause).
		Int64("subject_id", subjectID).
		Str("login", req.Login).
		Str("email", req.Email).
		Msg("remote identity created without local account; manual reconciliation required")

	entry := ports.ReconciliationEntry{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Login:     req.Login,
		Email:     req.Email,
		Reason:    cause.Error(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to record reconciliation entry")
	}
}

func (s *AccountService) encryptedPassword(req *domain.RegistrationRequest) (string, error) {
	if req.EncryptedPassword != "" {
		return req.EncryptedPassword, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AccountService) Confirm(ctx context.Context, req domain.ConfirmationRequest) (domain.AuthOutcome, error) {
	outcome, err := s.gateway.ConfirmAccount(ctx, req)
	if err != nil {
		return domain.AuthOutcome{}, fmt.Errorf("confirm account: %w", err)
	}
	return outcome, nil
}

func (s *AccountService) Unlock(ctx context.Context, req domain.ConfirmationRequest) (domain.AuthOutcome, error) {
	outcome, err := s.gateway.UnlockAccount(ctx, req)
	if err != nil {
		return domain.AuthOutcome{}, fmt.Errorf("unlock account: %w", err)
	}
	return outcome, nil
}

func (s *AccountService) ResetPassword(ctx context.Context, req domain.PasswordResetRequest) (domain.AuthOutcome, error) {
	outcome, err := s.gateway.ResetPassword(ctx, req)
	if err != nil {
		return domain.AuthOutcome{}, fmt.Errorf("reset password: %w", err)
	}
	return outcome, nil
}

// UpdatePassword relays a password change authorised by the caller's token.
func (s *AccountService) UpdatePassword(ctx context.Context, token string, req domain.PasswordUpdateRequest) (domain.AuthOutcome, error) {
	if token == "" {
		return domain.AuthOutcome{}, domain.ErrForbidden
	}
	outcome, err := s.gateway.UpdatePassword(ctx, token, req)
	if err != nil {
		return domain.AuthOutcome{}, fmt.Errorf("update password: %w", err)
	}
	return outcome, nil
}

// IssueToken exchanges credentials for session cookies.
func (s *AccountService) IssueToken(ctx context.Context, req domain.AuthByEmailRequest) (*domain.TokenGrant, error) {
	grant, err := s.gateway.GenerateToken(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := checkGrant(grant); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return grant, nil
}

// RefreshToken trades a refresh token for a new pair of session cookies.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	grant, err := s.gateway.RefreshAccess(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if err := checkGrant(grant); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return grant, nil
}

func (s *AccountService) LookupRemoteAccount(ctx context.Context, login, email string) (*domain.RemoteAccount, error) {
	account, err := s.gateway.GetAccount(ctx, login, email)
	if err != nil {
		return nil, fmt.Errorf("lookup remote account: %w", err)
	}
	return account, nil
}

func (s *AccountService) FindAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// checkGrant enforces that a successful grant carries both session cookies.
func checkGrant(grant *domain.TokenGrant) error {
	if grant == nil {
		return errors.New("empty token grant")
	}
	if !grant.Outcome.Success {
		return nil
	}
	return session.ValidateRequired(grant.Cookies, domain.SessionCookieNames...)
}
