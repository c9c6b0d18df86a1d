package authRepository

import (
	"greeny/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/net/context"
)

type Repository interface {
	NewClient(tx bool) (Client, error)
}

type Client struct {
	Users interface {
		CreateUser(ctx context.Context, user entity.User) error
		GetByID(ctx context.Context, id string) (entity.User, error)
		GetByEmail(ctx context.Context, email string) (entity.User, error)
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
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = noop
		rollbackFunc = noop
	}

	return Client{
		Users:    &userRepository{q: db, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

// NewMongo backs the same client with a document store. Single document
// writes are atomic there, so tx only affects Commit and Rollback being no-ops.
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
		Users:    &userMongoRepository{db: r.DB, log: r.log},
		Commit:   noop,
		Rollback: noop,
	}, nil
}

func noop() error { return nil }

type userRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}

type userMongoRepository struct {
	db  *mongo.Database
	log *logrus.Logger
}
