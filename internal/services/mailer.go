package services

import (
	"context"
	"fmt"
	"log"

	"furniro_back_end/internal/config"

	"github.com/wneessen/go-mail"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string // optionnel, envoyé en alternative au texte brut
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	from   string
	client *mail.Client
}

// NewSMTPMailer prépare le client SMTP. Le port 465 utilise le TLS implicite,
// les autres ports exigent STARTTLS.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST non configuré")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("client SMTP: %w", err)
	}
	return &SMTPMailer{from: cfg.From, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email, err := buildMsg(m.from, msg)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", msg.To)
	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("envoi e-mail à %s: %w", msg.To, err)
	}
	return nil
}

func buildMsg(from string, msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return nil, fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("destinataire invalide: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		email.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return email, nil
}

// LogMailer remplace le SMTP quand il n'est pas configuré (développement).
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("📧 [dev] e-mail non envoyé à %s : %s", msg.To, msg.Subject)
	return nil
}
