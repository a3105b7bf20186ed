package domain

// AuthResultType is the machine-readable reason attached to an AuthOutcome.
// Values reported by the auth service are passed through untouched.
type AuthResultType string

const (
	ResultRegistered      AuthResultType = "Registered"
	ResultConfirmed       AuthResultType = "Confirmed"
	ResultUnlocked        AuthResultType = "Unlocked"
	ResultPasswordReset   AuthResultType = "PasswordReset"
	ResultPasswordUpdated AuthResultType = "PasswordUpdated"
	ResultTokenGenerated  AuthResultType = "TokenGenerated"
	ResultTokenRefreshed  AuthResultType = "TokenRefreshed"

	ResultInvalidEmail        AuthResultType = "InvalidEmail"
	ResultInvalidPassword     AuthResultType = "InvalidPassword"
	ResultBadRequestInstance  AuthResultType = "BadRequestInstance"
	ResultBadResponseInstance AuthResultType = "BadResponseInstance"
	ResultNotCreatedLocally   AuthResultType = "NotCreatedLocally"
	ResultUnspecified         AuthResultType = "Unspecified"
)

// AuthOutcome is the result of every external-auth operation.
type AuthOutcome struct {
	Success bool           `json:"success"`
	Type    AuthResultType `json:"type"`
}

// Succeeded returns a positive outcome.
func Succeeded(t AuthResultType) AuthOutcome {
	return AuthOutcome{Success: true, Type: t}
}

// Failed returns a negative outcome. A failure always carries a reason.
func Failed(t AuthResultType) AuthOutcome {
	if t == "" {
		t = ResultUnspecified
	}
	return AuthOutcome{Success: false, Type: t}
}

// Normalize enforces the failure/reason pairing on outcomes decoded from the wire.
func (o AuthOutcome) Normalize() AuthOutcome {
	if !o.Success && o.Type == "" {
		o.Type = ResultUnspecified
	}
	return o
}
