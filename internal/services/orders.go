package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{4}$`)
	phoneRe      = regexp.MustCompile(`^\+?[\d\s]{10,15}$`)
)

type OrderService struct {
	orders   store.OrderStore
	products store.ProductStore
	audit    AuditRecorder
}

func NewOrderService(orders store.OrderStore, products store.ProductStore, audit AuditRecorder) *OrderService {
	return &OrderService{orders: orders, products: products, audit: audit}
}

// Create résout le prix courant de chaque produit et le fige dans la ligne de
// commande. Un produit inexistant fait échouer toute la commande.
func (s *OrderService) Create(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(in.Items))
	for _, item := range in.Items {
		id, err := store.ParseID(item.Product, "produit")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(in.Items))
	for i, item := range in.Items {
		p, ok := products[ids[i]]
		if !ok {
			return nil, apperr.NotFound("Produit %s introuvable", item.Product)
		}
		lines = append(lines, models.OrderLine{
			Product:   p.ID,
			Quantity:  item.Quantity,
			UnitPrice: UnitPrice(p.Price, p.Discount),
			ListPrice: p.Price,
			Discount:  p.Discount,
		})
	}

	order := &models.Order{
		Items:          lines,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		Country:        strings.TrimSpace(in.Country),
		City:           strings.TrimSpace(in.City),
		Address:        strings.TrimSpace(in.Address),
		PostalCode:     in.PostalCode,
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		AdditionalInfo: in.AdditionalInfo,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("🛒 Commande %s créée (%d ligne(s), %s€)", order.ID.Hex(), len(lines), OrderTotal(order).StringFixed(2))
	s.audit.Record(ctx, models.AuditEntry{
		OrderID: order.ID.Hex(),
		Action:  models.ActionOrderCreate,
		Detail:  fmt.Sprintf("total=%s", OrderTotal(order).StringFixed(2)),
	})
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := store.ParseID(id, "commande")
	if err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, oid)
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id, "commande")
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, oid); err != nil {
		return err
	}
	s.audit.Record(ctx, models.AuditEntry{OrderID: oid.Hex(), Action: models.ActionOrderDelete})
	return nil
}

// MarkPaid est l'unique chemin qui passe une commande à payée.
func (s *OrderService) MarkPaid(ctx context.Context, id, detail string) (bool, error) {
	oid, err := store.ParseID(id, "commande")
	if err != nil {
		return false, err
	}
	changed, err := s.orders.MarkPaid(ctx, oid)
	if err != nil {
		return false, err
	}
	if changed {
		s.audit.Record(ctx, models.AuditEntry{OrderID: id, Action: models.ActionOrderPaid, Detail: detail})
	}
	return changed, nil
}

func validateOrderInput(in models.OrderInput) error {
	if len(in.Items) == 0 {
		return apperr.Validation("La commande doit contenir au moins un produit")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return apperr.Validation("Quantité invalide pour le produit %s", item.Product)
		}
	}
	if len(strings.TrimSpace(in.FirstName)) < 2 || len(strings.TrimSpace(in.LastName)) < 2 {
		return apperr.Validation("Nom et prénom requis")
	}
	if !postalCodeRe.MatchString(in.PostalCode) {
		return apperr.Validation("Code postal invalide (4 chiffres attendus)")
	}
	if !phoneRe.MatchString(strings.TrimSpace(in.PhoneNumber)) {
		return apperr.Validation("Numéro de téléphone invalide")
	}
	if !strings.Contains(in.Email, "@") {
		return apperr.Validation("Email invalide")
	}
	return nil
}
