package recommendationRepository

import (
	"greeny/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

type Client struct {
	Recommendations interface {
		Create(ctx context.Context, rec entity.Recommendation) error
		GetByID(ctx context.Context, id string) (entity.Recommendation, error)
		List(ctx context.Context, className string) ([]entity.Recommendation, error)
		Update(ctx context.Context, rec entity.Recommendation) error
		Delete(ctx context.Context, id string) error
	}

	Saved interface {
		Create(ctx context.Context, saved entity.SavedRecommendation) error
		ListByUser(ctx context.Context, userID string) ([]entity.SavedRecommendation, error)
	}

	Commit   func() error
	Rollback func() error
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = noop
		rollbackFunc = noop
	}

	return Client{
		Recommendations: &recommendationsRepository{q: sqlExecutor, log: r.log},
		Saved:           &savedRepository{q: sqlExecutor, log: r.log},
		Commit:          commitFunc,
		Rollback:        rollbackFunc,
	}, nil
}

func NewMongo(db *mongo.Database, log *logrus.Logger) Repository {
	return &mongoRepository{
		DB:  db,
		log: log,
	}
}

type mongoRepository struct {
	DB  *mongo.Database
	log *logrus.Logger
}

func (r *mongoRepository) NewClient(_ bool) (Client, error) {
	return Client{
		Recommendations: &recommendationsMongoRepository{db: r.DB, log: r.log},
		Saved:           &savedMongoRepository{db: r.DB, log: r.log},
		Commit:          noop,
		Rollback:        noop,
	}, nil
}

func noop() error { return nil }

type recommendationsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type savedRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type recommendationsMongoRepository struct {
	db  *mongo.Database
	log *logrus.Logger
}

type savedMongoRepository struct {
	db  *mongo.Database
	log *logrus.Logger
}
