package store

import (
	"context"
	"strings"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FeedbackStore interface {
	Create(ctx context.Context, f *models.Feedback) error
	List(ctx context.Context) ([]models.Feedback, error)
	Archive(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
}

type MailOfferStore interface {
	Create(ctx context.Context, m *models.MailOffer) error
	DeleteByEmail(ctx context.Context, email string) error
}

type MongoFeedback struct {
	col *mongo.Collection
}

func NewMongoFeedback(db *mongo.Database) *MongoFeedback {
	return &MongoFeedback{col: db.Collection(FeedbackCollection)}
}

func (s *MongoFeedback) Create(ctx context.Context, f *models.Feedback) error {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.CreatedAt, f.UpdatedAt = now, now
	f.Archived = false
	if _, err := s.col.InsertOne(ctx, f); err != nil {
		return apperr.Internal(err, "Erreur enregistrement feedback")
	}
	return nil
}

func (s *MongoFeedback) List(ctx context.Context) ([]models.Feedback, error) {
	cursor, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture feedback")
	}
	out := []models.Feedback{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage feedback")
	}
	return out, nil
}

func (s *MongoFeedback) Archive(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	update := bson.M{"$set": bson.M{"archived": true, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.Feedback
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&f); err != nil {
		return nil, translate(err, "Feedback introuvable", "", "Erreur archivage feedback")
	}
	return &f, nil
}

type MongoMailOffers struct {
	col *mongo.Collection
}

func NewMongoMailOffers(db *mongo.Database) *MongoMailOffers {
	return &MongoMailOffers{col: db.Collection(MailOffersCollection)}
}

// Create s'appuie sur l'index unique sur email pour détecter les doublons.
func (s *MongoMailOffers) Create(ctx context.Context, m *models.MailOffer) error {
	m.ID = primitive.NewObjectID()
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.CreatedAt = time.Now().UTC()
	_, err := s.col.InsertOne(ctx, m)
	return translate(err, "", "Cet email est déjà inscrit", "Erreur inscription newsletter")
}

func (s *MongoMailOffers) DeleteByEmail(ctx context.Context, email string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return apperr.Internal(err, "Erreur désinscription newsletter")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Email non inscrit")
	}
	return nil
}
