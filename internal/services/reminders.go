package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"

	"github.com/robfig/cron/v3"
)

type SweepReport struct {
	Processed int  `json:"processed"`
	Reminded  int  `json:"reminded"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"` // une autre instance détenait le verrou
}

// checkoutOpener : sous-ensemble du PaymentService utilisé par la relance.
type checkoutOpener interface {
	Checkout(ctx context.Context, order *models.Order, extraDiscount float64) (*CheckoutSession, error)
}

type ReminderService struct {
	orders   store.OrderStore
	payments checkoutOpener
	mailer   Mailer
	cache    cache.Store
	audit    AuditRecorder
	discount float64
}

func NewReminderService(orders store.OrderStore, payments checkoutOpener, mailer Mailer,
	locks cache.Store, audit AuditRecorder, discount float64) *ReminderService {
	return &ReminderService{
		orders:   orders,
		payments: payments,
		mailer:   mailer,
		cache:    locks,
		audit:    audit,
		discount: discount,
	}
}

// Sweep relance chaque commande non payée et jamais relancée. L'échec d'une
// commande est journalisé et n'interrompt pas les suivantes.
func (s *ReminderService) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	acquired, err := s.cache.SetNX(ctx, cache.SweepLockKey, cache.SweepLockTTL)
	if err != nil {
		return report, fmt.Errorf("verrou de relance: %w", err)
	}
	if !acquired {
		log.Println("⏭️ Relance déjà en cours sur une autre instance")
		report.Skipped = true
		return report, nil
	}
	defer func() {
		if err := s.cache.Delete(context.WithoutCancel(ctx), cache.SweepLockKey); err != nil {
			log.Printf("⚠️ Libération du verrou de relance: %v", err)
		}
	}()

	orders, err := s.orders.ListPendingReminders(ctx)
	if err != nil {
		return report, err
	}

	for i := range orders {
		if ctx.Err() != nil {
			log.Printf("⚠️ Relance interrompue: %v", ctx.Err())
			break
		}
		report.Processed++
		if err := s.remind(ctx, &orders[i]); err != nil {
			report.Failed++
			log.Printf("❌ Relance commande %s: %v", orders[i].ID.Hex(), err)
			continue
		}
		report.Reminded++
	}

	log.Printf("📬 Relance terminée : %d traitée(s), %d relancée(s), %d échec(s)",
		report.Processed, report.Reminded, report.Failed)
	return report, nil
}

func (s *ReminderService) remind(ctx context.Context, order *models.Order) error {
	sess, err := s.payments.Checkout(ctx, order, s.discount)
	if err != nil {
		return err
	}

	// L'e-mail est best-effort : son échec ne bloque pas le verrou reminder_sent
	msg, err := ReminderMessage(order.Email, order.FirstName, sess.URL, s.discount)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		log.Printf("⚠️ E-mail de relance non envoyé pour %s: %v", order.ID.Hex(), err)
	} else {
		log.Printf("📧 Relance envoyée à %s (commande %s)", order.Email, order.ID.Hex())
	}

	if err := s.orders.MarkReminderSent(ctx, order.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, models.AuditEntry{
		OrderID: order.ID.Hex(),
		Action:  models.ActionOrderReminderSent,
		Detail:  "session=" + sess.ID,
	})
	return nil
}

type ReminderScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewReminderScheduler programme Sweep selon une expression cron à 5 champs.
func NewReminderScheduler(spec string, svc *ReminderService) (*ReminderScheduler, error) {
	s := &ReminderScheduler{cron: cron.New(), timeout: cache.SweepLockTTL}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := svc.Sweep(ctx); err != nil {
			log.Printf("❌ Relance des commandes impayées: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("expression cron %q invalide: %w", spec, err)
	}
	return s, nil
}

func (s *ReminderScheduler) Start() {
	s.cron.Start()
	log.Println("⏰ Planificateur de relance démarré")
}

// Stop attend la fin d'une relance en cours ou l'expiration de ctx.
func (s *ReminderScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("⚠️ Arrêt du planificateur sans attendre la relance en cours")
	}
}
