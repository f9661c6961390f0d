package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckoutLine struct {
	Name        string
	Description string
	Image       string
	UnitAmount  int64 // centimes
	Quantity    int64
}

type SessionRequest struct {
	OrderID       string
	CustomerEmail string
	Lines         []CheckoutLine
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutResult est la réponse renvoyée au front.
type CheckoutResult struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	OrderID string `json:"order_id"`
}

// CheckoutGateway crée une session de paiement hébergée.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}

type StripeGateway struct {
	client     session.Client
	currency   string
	successURL string
	cancelURL  string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	return &StripeGateway{
		client:     session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey},
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.cancelURL),
		ClientReferenceID:  stripe.String(req.OrderID),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(orderIDMetadataKey, req.OrderID)

	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(l.Name),
		}
		if l.Description != "" {
			product.Description = stripe.String(l.Description)
		}
		if l.Image != "" {
			product.Images = stripe.StringSlice([]string{l.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				UnitAmount:  stripe.Int64(l.UnitAmount),
				ProductData: product,
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	s, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("création session Stripe: %w", err)
	}
	log.Printf("💳 Session Stripe créée : %s (commande %s)", s.ID, req.OrderID)
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

type PaymentService struct {
	orders        *OrderService
	products      productReader
	gateway       CheckoutGateway
	cache         cache.Store
	audit         AuditRecorder
	webhookSecret string
	policy        string
}

// productReader : sous-ensemble du ProductStore utile au checkout.
type productReader interface {
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

func NewPaymentService(orders *OrderService, products productReader, gateway CheckoutGateway,
	store cache.Store, audit AuditRecorder, cfg config.Config) *PaymentService {
	return &PaymentService{
		orders:        orders,
		products:      products,
		gateway:       gateway,
		cache:         store,
		audit:         audit,
		webhookSecret: cfg.Stripe.WebhookSecret,
		policy:        cfg.Reminder.DiscountPolicy,
	}
}

// CheckoutNew persiste la commande puis ouvre la session de paiement. Si la
// création de session échoue, la commande reste non payée et sera reprise par
// la relance.
func (s *PaymentService) CheckoutNew(ctx context.Context, in models.OrderInput) (*CheckoutResult, error) {
	order, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	sess, err := s.Checkout(ctx, order, 0)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{ID: sess.ID, URL: sess.URL, OrderID: order.ID.Hex()}, nil
}

// CheckoutExisting ouvre une nouvelle session pour une commande existante,
// sans jamais dupliquer l'enregistrement local.
func (s *PaymentService) CheckoutExisting(ctx context.Context, orderID string) (*CheckoutResult, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Paid {
		return nil, apperr.Conflict("Commande déjà payée")
	}
	sess, err := s.Checkout(ctx, order, 0)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{ID: sess.ID, URL: sess.URL, OrderID: order.ID.Hex()}, nil
}

// Checkout construit une ligne Stripe par ligne de commande au prix figé,
// éventuellement diminué de extraDiscount pourcents.
func (s *PaymentService) Checkout(ctx context.Context, order *models.Order, extraDiscount float64) (*CheckoutSession, error) {
	ids := make([]primitive.ObjectID, 0, len(order.Items))
	for _, l := range order.Items {
		ids = append(ids, l.Product)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	req := SessionRequest{OrderID: order.ID.Hex(), CustomerEmail: order.Email}
	for _, l := range order.Items {
		line := CheckoutLine{
			Name:       "Produit indisponible",
			UnitAmount: ToCents(CheckoutUnitPrice(l, extraDiscount, s.policy)),
			Quantity:   int64(l.Quantity),
		}
		if p, ok := products[l.Product]; ok {
			line.Name = p.Name
			line.Description = truncate(p.Description, 500)
			if strings.HasPrefix(p.CoverPhoto, "http") {
				line.Image = p.CoverPhoto
			}
		}
		req.Lines = append(req.Lines, line)
	}

	sess, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return nil, apperr.Internal(err, "Erreur création session de paiement")
	}

	detail := "session=" + sess.ID
	if extraDiscount > 0 {
		detail += fmt.Sprintf(" remise=%s%%", formatPercent(extraDiscount))
	}
	s.audit.Record(ctx, models.AuditEntry{OrderID: req.OrderID, Action: models.ActionOrderCheckout, Detail: detail})
	return sess, nil
}

// HandleWebhook vérifie puis applique un événement Stripe. Une redélivrance
// d'un événement déjà appliqué est acquittée sans retraitement.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookEvent, error) {
	event, err := ParseWebhook(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, err
	}

	switch e := event.(type) {
	case CheckoutCompleted:
		return e, s.applyCompleted(ctx, e)
	case CheckoutExpired:
		log.Printf("⌛ Session Stripe %s expirée (commande %s)", e.SessionID, e.OrderID)
	case UnhandledEvent:
		log.Printf("ℹ️ Événement Stripe ignoré : %s", e.Type)
	}
	return event, nil
}

// applyCompleted passe la commande en payée. L'événement n'est mémorisé
// qu'après l'écriture : une livraison qui échoue reste rejouable.
func (s *PaymentService) applyCompleted(ctx context.Context, e CheckoutCompleted) error {
	key := cache.StripeEventKey(e.ID)
	seen, err := s.cache.Exists(ctx, key)
	if err != nil {
		// Sans Redis on retombe sur l'idempotence du $set
		log.Printf("⚠️ Déduplication webhook indisponible: %v", err)
	}
	if seen {
		log.Printf("🔁 Événement Stripe %s déjà traité", e.ID)
		return nil
	}

	changed, err := s.orders.MarkPaid(ctx, e.OrderID, "session="+e.SessionID)
	if err != nil {
		if !errors.As(err, new(*apperr.Error)) {
			err = apperr.Internal(err, "Erreur mise à jour commande")
		}
		return err
	}

	// La commande est payée : la mémorisation ne dépend plus de la requête
	if _, err := s.cache.SetNX(context.WithoutCancel(ctx), key, cache.StripeEventTTL); err != nil {
		log.Printf("⚠️ Impossible de mémoriser %s: %v", key, err)
	}

	if changed {
		log.Printf("✅ Commande %s payée (session %s)", e.OrderID, e.SessionID)
	} else {
		log.Printf("🔁 Commande %s déjà marquée payée", e.OrderID)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
