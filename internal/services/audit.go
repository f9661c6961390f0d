package services

import (
	"context"
	"log"
	"time"

	"furniro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// AuditRecorder trace les transitions des commandes. Un échec d'écriture est
// journalisé et n'interrompt jamais l'opération métier.
type AuditRecorder interface {
	Record(ctx context.Context, e models.AuditEntry)
}

// AuditLog ajoute la lecture de l'historique d'une commande.
type AuditLog interface {
	AuditRecorder
	History(ctx context.Context, orderID string, limit int) ([]models.AuditEntry, error)
}

// NoopAudit est utilisé quand ScyllaDB n'est pas configuré.
type NoopAudit struct{}

func (NoopAudit) Record(context.Context, models.AuditEntry) {}

func (NoopAudit) History(context.Context, string, int) ([]models.AuditEntry, error) {
	return []models.AuditEntry{}, nil
}

const orderEventsSchema = `
	CREATE TABLE IF NOT EXISTS order_events (
		order_id   text,
		event_id   timeuuid,
		action     text,
		detail     text,
		created_at timestamp,
		PRIMARY KEY (order_id, event_id)
	) WITH CLUSTERING ORDER BY (event_id DESC)`

type ScyllaAudit struct {
	session *gocql.Session
	timeout time.Duration
}

func NewScyllaAudit(session *gocql.Session) *ScyllaAudit {
	return &ScyllaAudit{session: session, timeout: 3 * time.Second}
}

// EnsureSchema crée la table order_events si besoin.
func (a *ScyllaAudit) EnsureSchema(ctx context.Context) error {
	return a.session.Query(orderEventsSchema).WithContext(ctx).Exec()
}

func (a *ScyllaAudit) Record(ctx context.Context, e models.AuditEntry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	// L'audit survit à l'annulation de la requête HTTP qui l'a déclenché
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	err := a.session.Query(
		`INSERT INTO order_events (order_id, event_id, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.OrderID, gocql.UUIDFromTime(e.CreatedAt), e.Action, e.Detail, e.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement audit %s (%s): %v", e.Action, e.OrderID, err)
	}
}

// History retourne les derniers événements d'une commande, du plus récent au
// plus ancien.
func (a *ScyllaAudit) History(ctx context.Context, orderID string, limit int) ([]models.AuditEntry, error) {
	iter := a.session.Query(
		`SELECT action, detail, created_at FROM order_events WHERE order_id = ? LIMIT ?`,
		orderID, limit,
	).WithContext(ctx).Iter()

	out := []models.AuditEntry{}
	var (
		action, detail string
		createdAt      time.Time
	)
	for iter.Scan(&action, &detail, &createdAt) {
		out = append(out, models.AuditEntry{OrderID: orderID, Action: action, Detail: detail, CreatedAt: createdAt})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
