package domain

import "time"

// RegistrationRequest carries one registration attempt. Exactly one of
// Password (raw) or EncryptedPassword (bcrypt hash) is expected.
type RegistrationRequest struct {
	Login             string    `json:"login" validate:"required,min=3,max=32"`
	Email             string    `json:"email" validate:"required"`
	Password          string    `json:"password,omitempty" validate:"required_without=EncryptedPassword"`
	EncryptedPassword string    `json:"encrypted_password,omitempty" validate:"required_without=Password"`
	Birthdate         time.Time `json:"birthdate" validate:"required"`
	NationalityID     int64     `json:"nationality_id" validate:"required,gt=0"`
	GenderID          int64     `json:"gender_id" validate:"required,gt=0"`
}

// ConfirmationRequest is used by both account confirmation and unlock.
type ConfirmationRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// PasswordResetRequest starts a password reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// PasswordUpdateRequest changes the password of the token's subject.
type PasswordUpdateRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthByEmailRequest exchanges credentials for session tokens.
type AuthByEmailRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
