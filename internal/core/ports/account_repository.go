package ports

import (
	"context"
	"time"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AccountRepository persists the local account aggregate.
type AccountRepository interface {
	// Create writes the account with its settings, game associations and
	// achievement progress rows as one unit and returns the stored aggregate.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
}

// CatalogRepository reads the reference data used to bootstrap accounts.
type CatalogRepository interface {
	FindNationality(ctx context.Context, id int64) (*domain.Nationality, error)
	FindGender(ctx context.Context, id int64) (*domain.Gender, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
	ListAchievements(ctx context.Context) ([]domain.Achievement, error)
}

// ReconciliationEntry describes a remote identity without a local record.
type ReconciliationEntry struct {
	ID        string
	SubjectID int64
	Login     string
	Email     string
	Reason    string
	CreatedAt time.Time
}

// ReconciliationLog records identities that need manual repair.
type ReconciliationLog interface {
	Record(ctx context.Context, entry ReconciliationEntry) error
	Pending(ctx context.Context) ([]ReconciliationEntry, error)
}
