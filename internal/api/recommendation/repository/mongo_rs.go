package recommendationRepository

import (
	"context"
	"errors"
	"time"

	"greeny/database/mongodb"
	"greeny/internal/api/recommendation"
	"greeny/internal/entity"
	contextPkg "greeny/pkg/context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recommendationDocument struct {
	ID          string    `bson:"_id"`
	ClassName   string    `bson:"class_name"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d recommendationDocument) toEntity() entity.Recommendation {
	return entity.Recommendation{
		ID:          d.ID,
		ClassName:   d.ClassName,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type savedDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	ClassName   string    `bson:"class_name"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	SavedAt     time.Time `bson:"saved_at"`
}

func (r *recommendationsMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.RecommendationsCollection)
}

func (r *recommendationsMongoRepository) Create(ctx context.Context, rec entity.Recommendation) error {
	_, err := r.collection().InsertOne(ctx, recommendationDocument{
		ID:          rec.ID,
		ClassName:   rec.ClassName,
		Title:       rec.Title,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	})
	if err != nil {
		r.logError(ctx, err, "Create recommendation err")
		return err
	}
	return nil
}

func (r *recommendationsMongoRepository) GetByID(ctx context.Context, id string) (entity.Recommendation, error) {
	var doc recommendationDocument
	if err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Recommendation{}, recommendation.ErrRecommendationNotFound
		}
		r.logError(ctx, err, "GetByID query err")
		return entity.Recommendation{}, err
	}
	return doc.toEntity(), nil
}

func (r *recommendationsMongoRepository) List(ctx context.Context, className string) ([]entity.Recommendation, error) {
	filter := bson.M{}
	if className != "" {
		filter["class_name"] = className
	}

	cursor, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		r.logError(ctx, err, "List query err")
		return nil, err
	}

	var docs []recommendationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logError(ctx, err, "List decode err")
		return nil, err
	}

	recs := make([]entity.Recommendation, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.toEntity())
	}
	return recs, nil
}

func (r *recommendationsMongoRepository) Update(ctx context.Context, rec entity.Recommendation) error {
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": rec.ID}, bson.M{"$set": bson.M{
		"class_name":  rec.ClassName,
		"title":       rec.Title,
		"description": rec.Description,
		"updated_at":  rec.UpdatedAt,
	}})
	if err != nil {
		r.logError(ctx, err, "Update recommendation err")
		return err
	}
	if res.MatchedCount == 0 {
		return recommendation.ErrRecommendationNotFound
	}
	return nil
}

func (r *recommendationsMongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logError(ctx, err, "Delete recommendation err")
		return err
	}
	if res.DeletedCount == 0 {
		return recommendation.ErrRecommendationNotFound
	}
	return nil
}

func (r *recommendationsMongoRepository) logError(ctx context.Context, err error, msg string) {
	r.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"error":      err.Error(),
	}).Error(msg)
}

func (r *savedMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.SavedRecommendationsCollection)
}

func (r *savedMongoRepository) Create(ctx context.Context, saved entity.SavedRecommendation) error {
	_, err := r.collection().InsertOne(ctx, savedDocument(saved))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Create saved recommendation err")
		return err
	}
	return nil
}

func (r *savedMongoRepository) ListByUser(ctx context.Context, userID string) ([]entity.SavedRecommendation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	cursor, err := r.collection().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("ListByUser query err")
		return nil, err
	}

	var docs []savedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	saved := make([]entity.SavedRecommendation, 0, len(docs))
	for _, d := range docs {
		saved = append(saved, entity.SavedRecommendation(d))
	}
	return saved, nil
}
