package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/account-service/internal/core/domain"
)

const (
	collectionAccounts = "accounts"
	collectionProgress = "achievement_progress"
)

// AccountRepository stores the local account aggregate. The account document
// and its achievement progress rows are written in one transaction.
type AccountRepository struct {
	client   *mongo.Client
	accounts *mongo.Collection
	progress *mongo.Collection
}

func NewAccountRepository(client *mongo.Client, db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		client:   client,
		accounts: db.Collection(collectionAccounts),
		progress: db.Collection(collectionProgress),
	}
}

type accountDoc struct {
	ID          int64              `bson:"_id"`
	Login       string             `bson:"login"`
	Email       string             `bson:"email"`
	Roles       domain.Roles       `bson:"roles"`
	Birthdate   time.Time          `bson:"birthdate"`
	Nationality domain.Nationality `bson:"nationality"`
	Gender      domain.Gender      `bson:"gender"`
	Settings    domain.Settings    `bson:"settings"`
	Games       []domain.Game      `bson:"games"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type progressDoc struct {
	Key   domain.AchievementProgressKey `bson:"_id"`
	Value int                           `bson:"value"`
}

// Create inserts the account and every progress row atomically. A clash on
// id, login or email is reported as domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	doc := toAccountDoc(a)
	rows := make([]any, 0, len(a.Achievements))
	for _, p := range a.Achievements {
		rows = append(rows, progressDoc{Key: p.Key, Value: p.Value})
	}

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := r.accounts.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			if _, err := r.progress.InsertMany(sc, rows); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *a
	created.ID = doc.ID
	return &created, nil
}

// FindByID loads the account together with its achievement progress.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	cur, err := r.progress.Find(ctx,
		bson.M{"_id.account_id": id},
		options.Find().SetSort(bson.D{{Key: "_id.achievement_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	var rows []progressDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}

	a := doc.toDomain()
	a.Achievements = make([]domain.AchievementProgress, 0, len(rows))
	for _, row := range rows {
		a.Achievements = append(a.Achievements, domain.AchievementProgress{Key: row.Key, Value: row.Value})
	}
	return a, nil
}

// EnsureIndexes creates the unique login/email indexes that guard concurrent
// registrations, plus the progress lookup index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "login", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}

	_, err = r.progress.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "_id.account_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("progress indexes: %w", err)
	}
	return nil
}

func toAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:          a.ID,
		Login:       a.Login,
		Email:       a.Email,
		Roles:       a.Roles,
		Birthdate:   a.Birthdate.UTC(),
		Nationality: a.Nationality,
		Gender:      a.Gender,
		Settings:    a.Settings,
		Games:       a.Games,
		CreatedAt:   a.CreatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:          d.ID,
		Login:       d.Login,
		Email:       d.Email,
		Roles:       d.Roles,
		Birthdate:   d.Birthdate.UTC(),
		Nationality: d.Nationality,
		Gender:      d.Gender,
		Settings:    d.Settings,
		Games:       d.Games,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
