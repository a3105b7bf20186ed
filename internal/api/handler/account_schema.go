package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// --- Request / Response types ---

const birthdateLayout = "2006-01-02"

type registerRequest struct {
	Login             string `json:"login"              validate:"required,min=3,max=32"`
	Email             string `json:"email"              validate:"required"`
	Password          string `json:"password"           validate:"required_without=EncryptedPassword"`
	EncryptedPassword string `json:"encrypted_password" validate:"required_without=Password"`
	Birthdate         string `json:"birthdate"          validate:"required,datetime=2006-01-02"`
	NationalityID     int64  `json:"nationality_id"     validate:"required,gt=0"`
	GenderID          int64  `json:"gender_id"          validate:"required,gt=0"`
}

type confirmationRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code"  validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type passwordUpdateRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type tokenRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type outcomeResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type remoteAccountResponse struct {
	ID    int64          `json:"id"`
	Login string         `json:"login"`
	Email string         `json:"email"`
	Roles []roleResponse `json:"roles"`
}

type soundResponse struct {
	Master  int  `json:"master"`
	Music   int  `json:"music"`
	Effects int  `json:"effects"`
	Voice   int  `json:"voice"`
	Muted   bool `json:"muted"`
}

type settingsResponse struct {
	Theme string        `json:"theme"`
	Sound soundResponse `json:"sound"`
}

type referenceResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type achievementProgressResponse struct {
	AchievementID int64 `json:"achievement_id"`
	Value         int   `json:"value"`
}

type accountResponse struct {
	ID           int64                         `json:"id"`
	Login        string                        `json:"login"`
	Email        string                        `json:"email"`
	Roles        []roleResponse                `json:"roles"`
	Birthdate    string                        `json:"birthdate"`
	Nationality  referenceResponse             `json:"nationality"`
	Gender       referenceResponse             `json:"gender"`
	Settings     settingsResponse              `json:"settings"`
	Games        []referenceResponse           `json:"games"`
	Achievements []achievementProgressResponse `json:"achievements"`
	CreatedAt    time.Time                     `json:"created_at"`
}
