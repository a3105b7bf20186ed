package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/account-service/internal/core/domain"
)

const (
	collectionNationalities = "nationalities"
	collectionGenders       = "genders"
	collectionGames         = "games"
	collectionAchievements  = "achievements"
)

// CatalogRepository reads the reference data new accounts are built from.
type CatalogRepository struct {
	nationalities *mongo.Collection
	genders       *mongo.Collection
	games         *mongo.Collection
	achievements  *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		nationalities: db.Collection(collectionNationalities),
		genders:       db.Collection(collectionGenders),
		games:         db.Collection(collectionGames),
		achievements:  db.Collection(collectionAchievements),
	}
}

func (r *CatalogRepository) FindNationality(ctx context.Context, id int64) (*domain.Nationality, error) {
	var n domain.Nationality
	if err := findByID(ctx, r.nationalities, id, &n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNationalityNotFound
		}
		return nil, fmt.Errorf("find nationality: %w", err)
	}
	return &n, nil
}

func (r *CatalogRepository) FindGender(ctx context.Context, id int64) (*domain.Gender, error) {
	var g domain.Gender
	if err := findByID(ctx, r.genders, id, &g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGenderNotFound
		}
		return nil, fmt.Errorf("find gender: %w", err)
	}
	return &g, nil
}

func (r *CatalogRepository) ListGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := findAll(ctx, r.games, &games); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (r *CatalogRepository) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	var achievements []domain.Achievement
	if err := findAll(ctx, r.achievements, &achievements); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

func findByID(ctx context.Context, col *mongo.Collection, id int64, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return col.FindOne(ctx, bson.M{"_id": id}).Decode(out)
}

// findAll decodes the whole collection ordered by id.
func findAll(ctx context.Context, col *mongo.Collection, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
