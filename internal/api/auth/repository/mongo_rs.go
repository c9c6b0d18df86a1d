package authRepository

import (
	"context"
	"errors"
	"time"

	"greeny/database/mongodb"
	"greeny/internal/api/auth"
	"greeny/internal/entity"
	contextPkg "greeny/pkg/context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	IsAdmin   bool      `bson:"is_admin"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d userDocument) toEntity() entity.User {
	return entity.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		IsAdmin:   d.IsAdmin,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *userMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.UsersCollection)
}

func (r *userMongoRepository) CreateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)

	_, err := r.collection().InsertOne(c, userDocument{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Email already exists")
			return auth.ErrEmailAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")
		return err
	}

	return nil
}

func (r *userMongoRepository) GetByID(c context.Context, id string) (entity.User, error) {
	return r.findOne(c, bson.M{"_id": id}, "GetByID")
}

func (r *userMongoRepository) GetByEmail(c context.Context, email string) (entity.User, error) {
	return r.findOne(c, bson.M{"email": email}, "GetByEmail")
}

func (r *userMongoRepository) findOne(c context.Context, filter bson.M, op string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)

	var doc userDocument
	if err := r.collection().FindOne(c, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Debug(op + " no documents found")
			return entity.User{}, auth.ErrUserNotFound
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " query err")
		return entity.User{}, err
	}

	return doc.toEntity(), nil
}
