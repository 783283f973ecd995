package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/domain/entity"
)

type recorded struct {
	method, path string
	body         string
}

func newTestIndex(t *testing.T, reply string) (*RoutineIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewRoutineIndex(es, "saved_routines", nil), &calls
}

func TestRoutineIndex_IndexUsesAccountScopedID(t *testing.T) {
	x, calls := newTestIndex(t, `{"result":"created"}`)
	r := entity.SavedRoutine{ID: "r1", Title: "Calm", Goals: []string{"energy"}, CreatedAt: time.Unix(0, 0).UTC()}

	require.NoError(t, x.Index(context.Background(), "acct", r))
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.True(t, strings.HasSuffix(c.path, "/saved_routines/_doc/acct:r1"))
	assert.Contains(t, c.body, `"account_id":"acct"`)
}

func TestRoutineIndex_SearchFiltersAccount(t *testing.T) {
	x, calls := newTestIndex(t, `{"hits":{"hits":[{"_source":{"routine_id":"r2"}},{"_source":{"routine_id":"r1"}}]}}`)

	ids, err := x.Search(context.Background(), "acct", "calm", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids)

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &q))
	assert.Equal(t, buildQuery("acct", "calm", 5)["size"], int(q["size"].(float64)))
	assert.Contains(t, (*calls)[0].body, `"term":{"account_id":"acct"}`)
}

func TestRoutineIndex_EnsureCreatesMissingIndex(t *testing.T) {
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	x := NewRoutineIndex(es, "saved_routines", nil)
	require.NoError(t, x.Ensure(context.Background()))
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodHead, calls[0].method)
	assert.Equal(t, http.MethodPut, calls[1].method)
	assert.Contains(t, calls[1].body, `"account_id": {"type": "keyword"}`)
}

func TestRoutineIndex_RemoveAllDeletesByAccount(t *testing.T) {
	x, calls := newTestIndex(t, `{"deleted":2}`)

	require.NoError(t, x.RemoveAll(context.Background(), "acct"))
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.True(t, strings.HasSuffix(c.path, "/saved_routines/_delete_by_query"))
	assert.JSONEq(t, `{"query":{"term":{"account_id":"acct"}}}`, c.body)
}
