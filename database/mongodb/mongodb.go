package mongodb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection                = "users"
	RecommendationsCollection      = "recommendations"
	SavedRecommendationsCollection = "saved_recommendations"
)

// New connects to MONGO_URI and returns the MONGO_DATABASE database
// (default "greeny") with its indexes in place.
func New(log *logrus.Logger) (*mongo.Database, error) {
	uri, name := settingsFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("greeny"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(name)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", name).Info("Connected to MongoDB")

	return db, nil
}

func settingsFromEnv() (uri, name string) {
	uri = os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	name = os.Getenv("MONGO_DATABASE")
	if name == "" {
		name = "greeny"
	}
	return uri, name
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(RecommendationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "class_name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create recommendations index: %w", err)
	}

	_, err = db.Collection(SavedRecommendationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "saved_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create saved recommendations index: %w", err)
	}

	return nil
}

func Close(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
