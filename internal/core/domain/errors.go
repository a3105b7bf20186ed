package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")
	ErrForbidden      = errors.New("access forbidden")

	ErrNotFound            = errors.New("not found")
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrNationalityNotFound = fmt.Errorf("nationality %w", ErrNotFound)
	ErrGenderNotFound      = fmt.Errorf("gender %w", ErrNotFound)
	ErrAccountExists       = errors.New("account already exists")

	ErrAuthTransport         = errors.New("auth service unreachable")
	ErrMalformedResponse     = errors.New("malformed auth service response")
	ErrRemoteStatus          = errors.New("auth service rejected request")
	ErrMissingRequiredCookie = errors.New("missing required cookie")
	ErrIdentityMismatch      = errors.New("local account does not match remote identity")
)

// RemoteStatusError is returned when the auth service answers with a non-2xx status.
type RemoteStatusError struct {
	Operation  string
	StatusCode int
	Reason     string
}

func (e *RemoteStatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: auth service returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: auth service returned status %d (%s)", e.Operation, e.StatusCode, e.Reason)
}

func (e *RemoteStatusError) Unwrap() error { return ErrRemoteStatus }

// MissingRequiredCookieError names the first session cookie absent from a response.
type MissingRequiredCookieError struct {
	Name string
}

func (e *MissingRequiredCookieError) Error() string {
	return fmt.Sprintf("missing required cookie %q", e.Name)
}

func (e *MissingRequiredCookieError) Unwrap() error { return ErrMissingRequiredCookie }
