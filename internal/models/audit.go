package models

import "time"

// Actions tracées dans le journal d'audit des commandes
const (
	ActionOrderCreate       = "order.create"
	ActionOrderDelete       = "order.delete"
	ActionOrderCheckout     = "order.checkout"
	ActionOrderPaid         = "order.paid"
	ActionOrderReminderSent = "order.reminder_sent"
)

type AuditEntry struct {
	OrderID   string
	Action    string
	Detail    string
	CreatedAt time.Time
}
