package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/metrics"
)

// sessionClaims is the wire shape of tokens minted by the auth service.
type sessionClaims struct {
	Email string        `json:"email"`
	Roles []domain.Role `json:"roles"`
	jwt.RegisteredClaims
}

// TokenValidator verifies HS256 session tokens issued by the auth service.
// It holds no per-call state and is safe for concurrent use.
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
	log    zerolog.Logger
}

// TokenValidatorOption customises a TokenValidator.
type TokenValidatorOption func(*TokenValidator)

// WithClock replaces the wall clock used for expiry checks.
func WithClock(now func() time.Time) TokenValidatorOption {
	return func(v *TokenValidator) { v.now = now }
}

func NewTokenValidator(secret string, log zerolog.Logger, opts ...TokenValidatorOption) *TokenValidator {
	v := &TokenValidator{
		secret: []byte(secret),
		// Expiry is checked separately so expired tokens still decode.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
		log: log,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Decode verifies the signature and structure of token and returns its claims.
// It does not look at expiry.
func (v *TokenValidator) Decode(token string) (domain.TokenClaims, error) {
	var claims sessionClaims
	if _, err := v.parser.ParseWithClaims(token, &claims, v.key); err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing exp claim", domain.ErrMalformedToken)
	}
	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: subject %q is not numeric", domain.ErrMalformedToken, claims.Subject)
	}

	return domain.TokenClaims{
		SubjectID: subjectID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
		Roles:     domain.NewRoles(claims.Roles...),
	}, nil
}

// IsExpired reports whether the token's expiry lies in the past.
func (v *TokenValidator) IsExpired(token string) (bool, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return false, err
	}
	return claims.ExpiredAt(v.now()), nil
}

// Check classifies token without raising.
func (v *TokenValidator) Check(token string) domain.TokenStatus {
	_, status := v.classify(token)
	return status
}

// IsValid returns false for an absent or malformed token and ErrTokenExpired
// for an expired one.
func (v *TokenValidator) IsValid(token string) (bool, error) {
	_, status := v.classify(token)
	return statusResult(status)
}

// IsValidFor is IsValid plus a subject check. A token that belongs to another
// subject is reported as false, not as an error.
func (v *TokenValidator) IsValidFor(token string, subjectID int64) (bool, error) {
	claims, status := v.classify(token)
	ok, err := statusResult(status)
	if !ok || err != nil {
		return ok, err
	}
	return claims.SubjectID == subjectID, nil
}

func (v *TokenValidator) SubjectID(token string) (int64, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return 0, err
	}
	return claims.SubjectID, nil
}

func (v *TokenValidator) Email(token string) (string, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

func (v *TokenValidator) Roles(token string) (domain.Roles, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}

func (v *TokenValidator) classify(token string) (domain.TokenClaims, domain.TokenStatus) {
	status := domain.TokenAbsent
	var claims domain.TokenClaims

	if strings.TrimSpace(token) != "" {
		var err error
		claims, err = v.Decode(token)
		switch {
		case err != nil:
			v.log.Debug().Err(err).Msg("token rejected")
			status = domain.TokenInvalid
		case claims.ExpiredAt(v.now()):
			status = domain.TokenExpired
		default:
			status = domain.TokenValid
		}
	}

	metrics.TokenChecksTotal.WithLabelValues(status.String()).Inc()
	return claims, status
}

func (v *TokenValidator) key(_ *jwt.Token) (interface{}, error) {
	return v.secret, nil
}

func statusResult(status domain.TokenStatus) (bool, error) {
	switch status {
	case domain.TokenValid:
		return true, nil
	case domain.TokenExpired:
		return false, domain.ErrTokenExpired
	default:
		return false, nil
	}
}
