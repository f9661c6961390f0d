package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"furniro_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type esRequest struct {
	method string
	path   string
	body   map[string]any
}

// fakeElastic répond comme un nœud Elasticsearch minimal.
func fakeElastic(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*ElasticIndex, *[]esRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []esRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := esRequest{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&req.body)
		mu.Lock()
		seen = append(seen, req)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewElasticIndex(client, "products"), &seen
}

func TestElasticIndex_IndexAndDelete(t *testing.T) {
	idx, seen := fakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	p := models.Product{ID: primitive.NewObjectID(), Name: "Syltherine", Description: "Chaise élégante", Price: 250, Category: primitive.NewObjectID()}
	require.NoError(t, idx.Index(context.Background(), p))
	require.NoError(t, idx.Delete(context.Background(), p.ID.Hex()))

	require.Len(t, *seen, 2)
	indexed := (*seen)[0]
	assert.Equal(t, http.MethodPut, indexed.method)
	assert.Equal(t, "/products/_doc/"+p.ID.Hex(), indexed.path)
	assert.Equal(t, "Syltherine", indexed.body["name"])
	assert.Equal(t, p.Category.Hex(), indexed.body["category"])
	assert.Equal(t, http.MethodDelete, (*seen)[1].method)
}

func TestElasticIndex_IndexError(t *testing.T) {
	idx, _ := fakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"mapper_parsing_exception"}}`))
	})

	err := idx.Index(context.Background(), models.Product{ID: primitive.NewObjectID(), Name: "Lolito"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Lolito")
}

func TestElasticIndex_Search(t *testing.T) {
	idx, seen := fakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":2},"hits":[{"_id":"b"},{"_id":"a"}]}}`))
	})

	ids, err := idx.Search(context.Background(), "  chaise ", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.True(t, strings.HasSuffix(req.path, "/products/_search"))
	assert.Equal(t, float64(50), req.body["size"])
	match := req.body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "chaise", match["query"])
	assert.Equal(t, "AUTO", match["fuzziness"])
}

func TestElasticIndex_SearchErrorIsUnavailable(t *testing.T) {
	idx, _ := fakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	})

	_, err := idx.Search(context.Background(), "table", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestElasticIndex_EnsureIndex(t *testing.T) {
	idx, seen := fakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodHead, (*seen)[0].method)
	assert.Equal(t, http.MethodPut, (*seen)[1].method)
	assert.Equal(t, "/products", (*seen)[1].path)
	assert.Contains(t, (*seen)[1].body, "mappings")
}

func TestNoopSearch(t *testing.T) {
	_, err := NoopSearch{}.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
	assert.NoError(t, NoopSearch{}.Index(context.Background(), models.Product{}))
}
