package service

import (
	"context"
	"fmt"

	"github.com/99minutos/account-service/internal/core/domain"
)

// buildAccount assembles the local aggregate for a freshly registered identity:
// default settings, every catalog game and a zeroed progress row per catalog
// achievement.
func (s *AccountService) buildAccount(ctx context.Context, remote *domain.RemoteAccount, req *domain.RegistrationRequest) (*domain.Account, error) {
	nationality, err := s.catalog.FindNationality(ctx, req.NationalityID)
	if err != nil {
		return nil, fmt.Errorf("nationality %d: %w", req.NationalityID, err)
	}
	gender, err := s.catalog.FindGender(ctx, req.GenderID)
	if err != nil {
		return nil, fmt.Errorf("gender %d: %w", req.GenderID, err)
	}
	games, err := s.catalog.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	achievements, err := s.catalog.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	progress := make([]domain.AchievementProgress, 0, len(achievements))
	for _, a := range achievements {
		progress = append(progress, domain.AchievementProgress{
			Key: domain.AchievementProgressKey{AccountID: remote.ID, AchievementID: a.ID},
		})
	}

	return &domain.Account{
		ID:           remote.ID,
		Login:        remote.Login,
		Email:        remote.Email,
		Roles:        remote.Roles,
		Birthdate:    req.Birthdate.UTC(),
		Nationality:  *nationality,
		Gender:       *gender,
		Settings:     domain.DefaultSettings(),
		Games:        games,
		Achievements: progress,
		CreatedAt:    s.now().UTC(),
	}, nil
}
