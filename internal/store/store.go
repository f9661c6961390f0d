// Package store regroupe l'accès MongoDB : une interface et un dépôt par
// collection. Les erreurs du driver sont traduites ici en erreurs apperr.
package store

import (
	"errors"
	"strings"

	"furniro_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Noms des collections
const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	ReviewsCollection    = "reviews"
	OrdersCollection     = "orders"
	FeedbackCollection   = "feedback"
	MailOffersCollection = "mail_offers"
)

// ParseID convertit un identifiant hexadécimal ; label sert au message d'erreur
// ("produit", "commande"...).
func ParseID(hex, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("ID %s invalide", label)
	}
	return id, nil
}

// translate mappe une erreur du driver vers la taxonomie applicative.
func translate(err error, notFound, conflict, internal string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("%s", notFound)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict("%s", conflict)
	default:
		return apperr.Internal(err, "%s", internal)
	}
}
