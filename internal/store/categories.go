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

type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, in models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoCategories struct {
	col *mongo.Collection
}

func NewMongoCategories(db *mongo.Database) *MongoCategories {
	return &MongoCategories{col: db.Collection(CategoriesCollection)}
}

func (s *MongoCategories) Create(ctx context.Context, c *models.Category) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, c)
	return translate(err, "Catégorie introuvable", "Une catégorie avec ce nom existe déjà", "Erreur création catégorie")
}

func (s *MongoCategories) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "Catégorie introuvable", "", "Erreur lecture catégorie")
	}
	return &c, nil
}

func (s *MongoCategories) List(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture catégories")
	}
	cats := []models.Category{}
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage catégories")
	}
	return cats, nil
}

func (s *MongoCategories) Update(ctx context.Context, id primitive.ObjectID, in models.CategoryInput) (*models.Category, error) {
	update := bson.M{"$set": bson.M{
		"name":        in.Name,
		"cover_photo": in.CoverPhoto,
		"updated_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.Category
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		return nil, translate(err, "Catégorie introuvable", "Une catégorie avec ce nom existe déjà", "Erreur mise à jour catégorie")
	}
	return &c, nil
}

func (s *MongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "Erreur suppression catégorie")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Catégorie introuvable")
	}
	return nil
}
