package domain

import "time"

// Theme is the UI theme stored in account settings.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme  = ThemeDark
	DefaultVolume = 50
)

// SoundSettings holds per-channel volumes in the 0..100 range.
type SoundSettings struct {
	Master  int  `json:"master" bson:"master"`
	Music   int  `json:"music" bson:"music"`
	Effects int  `json:"effects" bson:"effects"`
	Voice   int  `json:"voice" bson:"voice"`
	Muted   bool `json:"muted" bson:"muted"`
}

// Settings is the per-account preferences sub-aggregate.
type Settings struct {
	Theme Theme         `json:"theme" bson:"theme"`
	Sound SoundSettings `json:"sound" bson:"sound"`
}

// DefaultSettings returns the settings every new account starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme: DefaultTheme,
		Sound: SoundSettings{
			Master:  DefaultVolume,
			Music:   DefaultVolume,
			Effects: DefaultVolume,
			Voice:   DefaultVolume,
		},
	}
}

// Nationality is catalog reference data.
type Nationality struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Gender is catalog reference data.
type Gender struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Game is a catalog entry every account is associated with.
type Game struct {
	ID    int64  `json:"id" bson:"_id"`
	Title string `json:"title" bson:"title"`
}

// Achievement is a catalog entry tracked per account.
type Achievement struct {
	ID     int64  `json:"id" bson:"_id"`
	GameID int64  `json:"game_id" bson:"game_id"`
	Name   string `json:"name" bson:"name"`
}

// AchievementProgressKey is the composite key of a progress row.
type AchievementProgressKey struct {
	AccountID     int64 `json:"account_id" bson:"account_id"`
	AchievementID int64 `json:"achievement_id" bson:"achievement_id"`
}

// AchievementProgress is one account's progress on one achievement.
type AchievementProgress struct {
	Key   AchievementProgressKey `json:"key"`
	Value int                    `json:"value"`
}

// RemoteAccount is the identity as known by the auth service.
type RemoteAccount struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Roles Roles  `json:"roles"`
}

// Account is the local user aggregate mirrored from the auth service.
type Account struct {
	ID           int64                 `json:"id"`
	Login        string                `json:"login"`
	Email        string                `json:"email"`
	Roles        Roles                 `json:"roles"`
	Birthdate    time.Time             `json:"birthdate"`
	Nationality  Nationality           `json:"nationality"`
	Gender       Gender                `json:"gender"`
	Settings     Settings              `json:"settings"`
	Games        []Game                `json:"games"`
	Achievements []AchievementProgress `json:"achievements"`
	CreatedAt    time.Time             `json:"created_at"`
}
