package services

import (
	"encoding/json"
	"fmt"

	"furniro_back_end/internal/apperr"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const orderIDMetadataKey = "order_id"

// WebhookEvent est l'union des événements Stripe que le serveur sait traiter.
type WebhookEvent interface {
	EventID() string
	webhookEvent()
}

// CheckoutCompleted : le client a payé la session de checkout.
type CheckoutCompleted struct {
	ID        string
	SessionID string
	OrderID   string
}

// CheckoutExpired : la session a expiré sans paiement.
type CheckoutExpired struct {
	ID        string
	SessionID string
	OrderID   string
}

// UnhandledEvent : type d'événement sans traitement, acquitté et ignoré.
type UnhandledEvent struct {
	ID   string
	Type string
}

func (e CheckoutCompleted) EventID() string { return e.ID }
func (e CheckoutExpired) EventID() string   { return e.ID }
func (e UnhandledEvent) EventID() string    { return e.ID }

func (CheckoutCompleted) webhookEvent() {}
func (CheckoutExpired) webhookEvent()   {}
func (UnhandledEvent) webhookEvent()    {}

// ParseWebhook vérifie la signature Stripe puis convertit l'événement.
// Toute erreur est une erreur de validation : rien ne doit être modifié.
func ParseWebhook(payload []byte, signature, secret string) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Message: "Signature webhook invalide", Err: err}
	}
	return eventFromStripe(event)
}

func eventFromStripe(event stripe.Event) (WebhookEvent, error) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionExpired:
		sess, err := decodeCheckoutSession(event)
		if err != nil {
			return nil, err
		}
		if event.Type == stripe.EventTypeCheckoutSessionExpired {
			return CheckoutExpired{ID: event.ID, SessionID: sess.ID, OrderID: sess.Metadata[orderIDMetadataKey]}, nil
		}
		return CheckoutCompleted{ID: event.ID, SessionID: sess.ID, OrderID: sess.Metadata[orderIDMetadataKey]}, nil
	default:
		return UnhandledEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
}

// decodeCheckoutSession rejette une session dont la métadonnée order_id est
// absente ou n'est pas un identifiant de commande.
func decodeCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	if event.Data == nil {
		return nil, apperr.Validation("Événement %s sans données", event.ID)
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Message: "Session de checkout illisible", Err: err}
	}
	orderID := sess.Metadata[orderIDMetadataKey]
	if orderID == "" {
		return nil, apperr.Validation("order_id manquant dans la session %s", sess.ID)
	}
	if _, err := primitive.ObjectIDFromHex(orderID); err != nil {
		return nil, apperr.Validation("order_id invalide dans la session %s", sess.ID)
	}
	return &sess, nil
}

func (e CheckoutCompleted) String() string {
	return fmt.Sprintf("checkout.session.completed(%s, commande %s)", e.SessionID, e.OrderID)
}
