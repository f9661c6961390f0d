package services

import (
	"context"
	"log"
	"net/mail"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"
)

type MailOfferService struct {
	offers store.MailOfferStore
	list   MailingList
}

func NewMailOfferService(offers store.MailOfferStore, list MailingList) *MailOfferService {
	return &MailOfferService{offers: offers, list: list}
}

// Subscribe enregistre l'adresse localement puis la pousse vers la liste
// externe. L'appel externe est best-effort.
func (s *MailOfferService) Subscribe(ctx context.Context, email string) (*models.MailOffer, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	offer := &models.MailOffer{Email: addr}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	if err := s.list.Subscribe(ctx, addr); err != nil {
		log.Printf("⚠️ Inscription Mailchimp échouée pour %s: %v", addr, err)
	}
	return offer, nil
}

func (s *MailOfferService) Unsubscribe(ctx context.Context, email string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.offers.DeleteByEmail(ctx, addr); err != nil {
		return err
	}

	if err := s.list.Unsubscribe(ctx, addr); err != nil {
		log.Printf("⚠️ Désinscription Mailchimp échouée pour %s: %v", addr, err)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(email))
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", apperr.Validation("Email invalide")
	}
	return addr, nil
}
