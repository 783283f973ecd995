package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

const requestTimeout = 3 * time.Second

// RoutineIndex keeps saved routines searchable in Elasticsearch. Documents
// carry the owning account id and every query filters on it.
type RoutineIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

func NewRoutineIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *RoutineIndex {
	return &RoutineIndex{ES: es, Name: index, Logger: logger}
}

func docID(accountID, routineID string) string { return accountID + ":" + routineID }

// account_id is a keyword so the term filter matches exactly.
const routineMapping = `{
  "mappings": {
    "properties": {
      "account_id": {"type": "keyword"},
      "routine_id": {"type": "keyword"},
      "title":      {"type": "text"},
      "goals":      {"type": "text"},
      "style":      {"type": "text"},
      "created_at": {"type": "date"}
    }
  }
}`

// Ensure creates the index with its mapping on first start.
func (x *RoutineIndex) Ensure(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	created, err := helpers.EnsureESIndex(c, x.ES, x.Name, []byte(routineMapping))
	if err != nil {
		return err
	}
	if created && x.Logger != nil {
		x.Logger.WithField("index", x.Name).Info("elasticsearch index created")
	}
	return nil
}

func (x *RoutineIndex) Index(ctx context.Context, accountID string, r entity.SavedRoutine) error {
	doc := map[string]any{
		"account_id": accountID,
		"routine_id": r.ID,
		"title":      r.Title,
		"goals":      r.Goals,
		"style":      r.Style,
		"created_at": r.CreatedAt.Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: docID(accountID, r.ID), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *RoutineIndex) Remove(ctx context.Context, accountID, routineID string) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: docID(accountID, routineID)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// RemoveAll deletes every document owned by the account. A missing index
// counts as already empty.
func (x *RoutineIndex) RemoveAll(ctx context.Context, accountID string) error {
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"account_id": accountID}},
	})
	if err != nil {
		return err
	}
	req := esapi.DeleteByQueryRequest{Index: []string{x.Name}, Body: strings.NewReader(string(b)), Conflicts: "proceed"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete by query: %s", res.Status())
	}
	return nil
}

// Search returns matching routine ids for one account, best match first.
func (x *RoutineIndex) Search(ctx context.Context, accountID, q string, size int) ([]string, error) {
	b, err := json.Marshal(buildQuery(accountID, q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Name), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					RoutineID string `json:"routine_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.RoutineID)
	}
	return out, nil
}

func buildQuery(accountID, q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "goals", "style"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"account_id": accountID},
				},
			},
		},
		"size": size,
	}
}
