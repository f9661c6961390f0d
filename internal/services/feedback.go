package services

import (
	"context"
	"log"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"
)

type FeedbackService struct {
	feedback store.FeedbackStore
	mailer   Mailer
}

func NewFeedbackService(feedback store.FeedbackStore, mailer Mailer) *FeedbackService {
	return &FeedbackService{feedback: feedback, mailer: mailer}
}

// Create enregistre le message puis envoie un accusé de réception. Un échec
// d'envoi est journalisé sans faire échouer la requête.
func (s *FeedbackService) Create(ctx context.Context, in models.FeedbackInput) (*models.Feedback, error) {
	f := &models.Feedback{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if len([]rune(f.Name)) < 2 || len([]rune(f.Subject)) < 2 || len([]rune(f.Message)) < 2 {
		return nil, apperr.Validation("Nom, sujet et message sont obligatoires")
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}

	msg, err := FeedbackAckMessage(f.Email, f.Name, f.Subject)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		log.Printf("⚠️ Accusé de réception non envoyé à %s: %v", f.Email, err)
	} else {
		log.Printf("📧 Accusé de réception envoyé à %s", f.Email)
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return s.feedback.List(ctx)
}

func (s *FeedbackService) Archive(ctx context.Context, id string) (*models.Feedback, error) {
	oid, err := store.ParseID(id, "feedback")
	if err != nil {
		return nil, err
	}
	return s.feedback.Archive(ctx, oid)
}
