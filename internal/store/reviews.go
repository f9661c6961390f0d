package store

import (
	"context"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	ListByProduct(ctx context.Context, product primitive.ObjectID) ([]models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProducts(ctx context.Context, products []primitive.ObjectID) error
}

type MongoReviews struct {
	col *mongo.Collection
}

func NewMongoReviews(db *mongo.Database) *MongoReviews {
	return &MongoReviews{col: db.Collection(ReviewsCollection)}
}

func (s *MongoReviews) Create(ctx context.Context, r *models.Review) error {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt, r.UpdatedAt = now, now
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return apperr.Internal(err, "Erreur création avis")
	}
	return nil
}

func (s *MongoReviews) ListByProduct(ctx context.Context, product primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"product": product}, opts)
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture avis")
	}
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage avis")
	}
	return reviews, nil
}

func (s *MongoReviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "Erreur suppression avis")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Avis introuvable")
	}
	return nil
}

func (s *MongoReviews) DeleteByProducts(ctx context.Context, products []primitive.ObjectID) error {
	if len(products) == 0 {
		return nil
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"product": bson.M{"$in": products}}); err != nil {
		return apperr.Internal(err, "Erreur suppression avis")
	}
	return nil
}
