package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductQuery est la forme normalisée d'une recherche catalogue.
type ProductQuery struct {
	Skip       int64
	Limit      int64
	Category   *primitive.ObjectID
	MinPrice   *float64
	MaxPrice   *float64
	IsNew      *bool
	IsFeatured *bool
	IDs        []primitive.ObjectID // résultat Elasticsearch, nil = pas de restriction
	Text       string               // recherche regex de repli
	Sort       string
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, category primitive.ObjectID) (int64, error)
	DeleteByCategory(ctx context.Context, category primitive.ObjectID) ([]primitive.ObjectID, error)
}

type MongoProducts struct {
	col *mongo.Collection
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{col: db.Collection(ProductsCollection)}
}

func (s *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.AdditionalPhotos == nil {
		p.AdditionalPhotos = []string{}
	}
	_, err := s.col.InsertOne(ctx, p)
	return translate(err, "Produit introuvable", "Un produit avec ce nom existe déjà", "Erreur création produit")
}

func (s *MongoProducts) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return nil, translate(err, "Produit introuvable", "", "Erreur lecture produit")
	}
	return &p, nil
}

func (s *MongoProducts) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture produits")
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage produits")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *MongoProducts) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	filter := ProductFilter(q)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(err, "Erreur comptage produits")
	}

	opts := options.Find().SetSort(ProductSort(q.Sort)).SetSkip(q.Skip).SetLimit(q.Limit)
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Internal(err, "Erreur lecture produits")
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, apperr.Internal(err, "Erreur décodage produits")
	}
	return products, total, nil
}

func (s *MongoProducts) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, translate(err, "Produit introuvable", "Un produit avec ce nom existe déjà", "Erreur mise à jour produit")
	}
	return &p, nil
}

func (s *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "Erreur suppression produit")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Produit introuvable")
	}
	return nil
}

func (s *MongoProducts) CountByCategory(ctx context.Context, category primitive.ObjectID) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"category": category})
	if err != nil {
		return 0, apperr.Internal(err, "Erreur comptage produits")
	}
	return n, nil
}

// DeleteByCategory supprime les produits d'une catégorie et retourne leurs IDs
// (pour nettoyer l'index de recherche et les avis).
func (s *MongoProducts) DeleteByCategory(ctx context.Context, category primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.col.Find(ctx, bson.M{"category": category}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture produits")
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage produits")
	}

	if _, err := s.col.DeleteMany(ctx, bson.M{"category": category}); err != nil {
		return nil, apperr.Internal(err, "Erreur suppression produits")
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ProductFilter construit le filtre MongoDB d'une recherche catalogue.
func ProductFilter(q ProductQuery) bson.M {
	filter := bson.M{}
	if q.Category != nil {
		filter["category"] = *q.Category
	}
	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if q.IsNew != nil {
		filter["is_new"] = *q.IsNew
	}
	if q.IsFeatured != nil {
		filter["is_featured"] = *q.IsFeatured
	}
	if q.IDs != nil {
		filter["_id"] = bson.M{"$in": q.IDs}
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

var sortableFields = map[string]bool{"created_at": true, "price": true, "name": true}

// ProductSort traduit "price" / "-price" en tri MongoDB. Un champ inconnu
// retombe sur le tri par défaut (plus récents d'abord).
func ProductSort(sort string) bson.D {
	field, dir := strings.TrimPrefix(sort, "-"), 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
	}
	if !sortableFields[field] {
		field, dir = "created_at", -1
	}
	// _id en second critère pour une pagination stable
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// IsSortable indique si la valeur du paramètre sort est acceptée.
func IsSortable(sort string) bool {
	return sort == "" || sortableFields[strings.TrimPrefix(sort, "-")]
}
