package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"furniro_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ErrSearchUnavailable signale que la recherche plein texte doit retomber sur
// MongoDB.
var ErrSearchUnavailable = errors.New("index de recherche indisponible")

type SearchIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
	// Search retourne les IDs des produits correspondants, par pertinence.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type NoopSearch struct{}

func (NoopSearch) Index(context.Context, models.Product) error { return nil }
func (NoopSearch) Delete(context.Context, string) error { return nil }
func (NoopSearch) Search(context.Context, string, int) ([]string, error) {
	return nil, ErrSearchUnavailable
}

type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticIndex(client *elasticsearch.Client, index string) *ElasticIndex {
	return &ElasticIndex{client: client, index: index}
}

const productMapping = `{
	"mappings": {
		"properties": {
			"name":        {"type": "text", "analyzer": "french"},
			"description": {"type": "text", "analyzer": "french"},
			"category":    {"type": "keyword"},
			"price":       {"type": "double"}
		}
	}
}`

// EnsureIndex crée l'index produits avec son mapping s'il n'existe pas.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{e.index}}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("vérification index %s: %w", e.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: e.index, Body: strings.NewReader(productMapping)}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("création index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création index %s: %s", e.index, res.String())
	}
	log.Printf("📚 Index Elasticsearch créé : %s", e.index)
	return nil
}

type productDoc struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

func (e *ElasticIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(productDoc{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category.Hex(),
		Price:       p.Price,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID.Hex(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("Elastic a renvoyé une erreur pour %s: %s", p.Name, res.String())
	}
	log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

func (e *ElasticIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("suppression Elastic: %w", err)
	}
	defer res.Body.Close()

	// 404 : document déjà absent
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("Elastic a renvoyé une erreur pour %s: %s", id, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     strings.TrimSpace(query),
				"fields":    []string{"name^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{Index: []string{e.index}, Body: &buf}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		log.Printf("⚠️ Elasticsearch injoignable: %v", err)
		return nil, ErrSearchUnavailable
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("❌ Elasticsearch erreur: %s", res.String())
		return nil, ErrSearchUnavailable
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}
	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
