package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MailingList reflète les inscriptions newsletter vers un service externe.
type MailingList interface {
	Subscribe(ctx context.Context, email string) error
	Unsubscribe(ctx context.Context, email string) error
}

type NoopMailingList struct{}

func (NoopMailingList) Subscribe(context.Context, string) error { return nil }
func (NoopMailingList) Unsubscribe(context.Context, string) error { return nil }

type MailchimpClient struct {
	apiKey  string
	listID  string
	baseURL string
	http    *http.Client
}

// NewMailchimpClient déduit le datacenter du suffixe de la clé (xxx-us6).
func NewMailchimpClient(apiKey, listID string) (*MailchimpClient, error) {
	i := strings.LastIndex(apiKey, "-")
	if i < 0 || i == len(apiKey)-1 {
		return nil, fmt.Errorf("clé Mailchimp sans datacenter")
	}
	return &MailchimpClient{
		apiKey:  apiKey,
		listID:  listID,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", apiKey[i+1:]),
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SubscriberHash est l'identifiant Mailchimp d'un membre : md5 de l'email en
// minuscules.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func (m *MailchimpClient) Subscribe(ctx context.Context, email string) error {
	body, err := json.Marshal(map[string]string{"email_address": email, "status": "subscribed"})
	if err != nil {
		return err
	}
	return m.do(ctx, http.MethodPost, fmt.Sprintf("/lists/%s/members", m.listID), body)
}

func (m *MailchimpClient) Unsubscribe(ctx context.Context, email string) error {
	return m.do(ctx, http.MethodDelete, fmt.Sprintf("/lists/%s/members/%s", m.listID, SubscriberHash(email)), nil)
}

func (m *MailchimpClient) do(ctx context.Context, method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth("furniro", m.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("appel Mailchimp: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&problem)
		return fmt.Errorf("Mailchimp %s %s: %d %s %s", method, path, res.StatusCode, problem.Title, problem.Detail)
	}
	return nil
}
