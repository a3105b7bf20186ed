package handler

import (
	"time"

	"github.com/99minutos/account-service/internal/core/domain"
)

// --- Request → Service input ---

func toRegistration(req registerRequest) (*domain.RegistrationRequest, error) {
	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil {
		return nil, err
	}
	return &domain.RegistrationRequest{
		Login:             req.Login,
		Email:             req.Email,
		Password:          req.Password,
		EncryptedPassword: req.EncryptedPassword,
		Birthdate:         birthdate,
		NationalityID:     req.NationalityID,
		GenderID:          req.GenderID,
	}, nil
}

// --- Domain → Response ---

func toOutcomeResponse(o domain.AuthOutcome) outcomeResponse {
	return outcomeResponse{Success: o.Success, Type: string(o.Type)}
}

func toRoleResponses(roles domain.Roles) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{ID: r.ID, Name: r.Name})
	}
	return out
}

func toRemoteAccountResponse(a *domain.RemoteAccount) remoteAccountResponse {
	return remoteAccountResponse{
		ID:    a.ID,
		Login: a.Login,
		Email: a.Email,
		Roles: toRoleResponses(a.Roles),
	}
}

func toAccountResponse(a *domain.Account) accountResponse {
	games := make([]referenceResponse, 0, len(a.Games))
	for _, g := range a.Games {
		games = append(games, referenceResponse{ID: g.ID, Name: g.Title})
	}
	progress := make([]achievementProgressResponse, 0, len(a.Achievements))
	for _, p := range a.Achievements {
		progress = append(progress, achievementProgressResponse{AchievementID: p.Key.AchievementID, Value: p.Value})
	}

	return accountResponse{
		ID:          a.ID,
		Login:       a.Login,
		Email:       a.Email,
		Roles:       toRoleResponses(a.Roles),
		Birthdate:   a.Birthdate.Format(birthdateLayout),
		Nationality: referenceResponse{ID: a.Nationality.ID, Name: a.Nationality.Name},
		Gender:      referenceResponse{ID: a.Gender.ID, Name: a.Gender.Name},
		Settings: settingsResponse{
			Theme: string(a.Settings.Theme),
			Sound: soundResponse{
				Master:  a.Settings.Sound.Master,
				Music:   a.Settings.Sound.Music,
				Effects: a.Settings.Sound.Effects,
				Voice:   a.Settings.Sound.Voice,
				Muted:   a.Settings.Sound.Muted,
			},
		},
		Games:        games,
		Achievements: progress,
		CreatedAt:    a.CreatedAt,
	}
}
