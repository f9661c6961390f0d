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

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// MarkPaid passe paid à true. changed vaut false si la commande était déjà payée.
	MarkPaid(ctx context.Context, id primitive.ObjectID) (changed bool, err error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
	ListPendingReminders(ctx context.Context) ([]models.Order, error)
}

type MongoOrders struct {
	col *mongo.Collection
}

func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{col: db.Collection(OrdersCollection)}
}

func (s *MongoOrders) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt, o.UpdatedAt = now, now
	o.Paid, o.ReminderSent = false, false
	if _, err := s.col.InsertOne(ctx, o); err != nil {
		return apperr.Internal(err, "Erreur création commande")
	}
	return nil
}

func (s *MongoOrders) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err, "Commande introuvable", "", "Erreur lecture commande")
	}
	return &o, nil
}

func (s *MongoOrders) List(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "Erreur suppression commande")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Commande introuvable")
	}
	return nil
}

// MarkPaid est naturellement idempotent : le filtre paid=false fait qu'une
// seconde livraison du webhook ne modifie rien.
func (s *MongoOrders) MarkPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "paid": false},
		bson.M{"$set": bson.M{"paid": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, apperr.Internal(err, "Erreur mise à jour commande")
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	// Rien modifié : soit déjà payée, soit inexistante
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, apperr.Internal(err, "Erreur lecture commande")
	}
	if n == 0 {
		return false, apperr.NotFound("Commande introuvable")
	}
	return false, nil
}

func (s *MongoOrders) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return apperr.Internal(err, "Erreur mise à jour commande")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Commande introuvable")
	}
	return nil
}

func (s *MongoOrders) ListPendingReminders(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, PendingReminderFilter())
}

// PendingReminderFilter sélectionne les commandes non payées et jamais relancées.
func PendingReminderFilter() bson.M {
	return bson.M{"paid": false, "reminder_sent": false}
}

func (s *MongoOrders) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal(err, "Erreur lecture commandes")
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperr.Internal(err, "Erreur décodage commandes")
	}
	return orders, nil
}
