package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/puffbuddy/backend/internal/telemetry"
)

// Index names
const (
	IndexProfiles = "puffbuddy-profiles"
	IndexStrains  = "puffbuddy-strains"
)

// MaxResults caps every search
const MaxResults = 20

// Index is the search backend used by handlers. Implementations return
// matching IDs; callers load the rows from the database.
type Index interface {
	IndexProfile(ctx context.Context, doc ProfileDoc) error
	IndexStrain(ctx context.Context, doc StrainDoc) error
	DeleteStrain(ctx context.Context, strainID string) error
	SearchProfiles(ctx context.Context, term, excludeUserID string, limit int) ([]string, error)
	SearchStrains(ctx context.Context, term string, limit int) ([]string, error)
}

// Client wraps the Elasticsearch client with PuffBuddy-specific functionality
type Client struct {
	es *elasticsearch.Client
}

var _ Index = (*Client)(nil)

// NewClient creates a new Elasticsearch client and verifies the connection
func NewClient(url string) (*Client, error) {
	if url == "" {
		url = "http://localhost:9200"
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Transport: telemetry.NewInstrumentedTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info returned %s", res.Status())
	}

	return &Client{es: es}, nil
}

// Ping checks the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info returned %s", res.Status())
	}
	return nil
}

// InitializeIndices creates the search indices with their mappings
func (c *Client) InitializeIndices(ctx context.Context) error {
	if err := c.createIndex(ctx, IndexProfiles, profilesMapping); err != nil {
		return fmt.Errorf("failed to create profiles index: %w", err)
	}
	if err := c.createIndex(ctx, IndexStrains, strainsMapping); err != nil {
		return fmt.Errorf("failed to create strains index: %w", err)
	}
	return nil
}

// keyword subfields are lowercased so wildcard queries match case-insensitively
var analysisSettings = map[string]interface{}{
	"analysis": map[string]interface{}{
		"normalizer": map[string]interface{}{
			"lowercase_normalizer": map[string]interface{}{
				"type":   "custom",
				"filter": []string{"lowercase"},
			},
		},
	},
}

func lowercaseText() map[string]interface{} {
	return map[string]interface{}{
		"type": "text",
		"fields": map[string]interface{}{
			"lower": map[string]interface{}{
				"type":         "keyword",
				"normalizer":   "lowercase_normalizer",
				"ignore_above": 1024,
			},
		},
	}
}

var profilesMapping = map[string]interface{}{
	"settings": analysisSettings,
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"user_id":      map[string]interface{}{"type": "keyword"},
			"display_name": lowercaseText(),
			"bio":          lowercaseText(),
			"tags":         map[string]interface{}{"type": "keyword"},
			"joined_at":    map[string]interface{}{"type": "date"},
		},
	},
}

var strainsMapping = map[string]interface{}{
	"settings": analysisSettings,
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":         map[string]interface{}{"type": "keyword"},
			"name":       lowercaseText(),
			"type":       map[string]interface{}{"type": "keyword"},
			"effects":    map[string]interface{}{"type": "keyword"},
			"flavors":    map[string]interface{}{"type": "keyword"},
			"created_at": map[string]interface{}{"type": "date"},
		},
	},
}

// createIndex creates an index unless it already exists
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	return responseError(res, "creating index")
}

// DeleteIndex deletes an index; a missing index is not an error
func (c *Client) DeleteIndex(ctx context.Context, indexName string) error {
	res, err := c.es.Indices.Delete([]string{indexName}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "deleting index")
}

// IndexProfile indexes a profile document keyed by user ID
func (c *Client) IndexProfile(ctx context.Context, doc ProfileDoc) error {
	return c.put(ctx, IndexProfiles, doc.UserID, doc)
}

// IndexStrain indexes a strain document
func (c *Client) IndexStrain(ctx context.Context, doc StrainDoc) error {
	return c.put(ctx, IndexStrains, doc.ID, doc)
}

// DeleteStrain removes a strain document; a missing document is not an error
func (c *Client) DeleteStrain(ctx context.Context, strainID string) error {
	res, err := c.es.Delete(IndexStrains, strainID, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete strain: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "deleting strain")
}

func (c *Client) put(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()
	return responseError(res, "indexing "+index)
}

// SearchProfiles returns user IDs whose display name or bio contains term
func (c *Client) SearchProfiles(ctx context.Context, term, excludeUserID string, limit int) ([]string, error) {
	pattern := wildcardPattern(term)
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"wildcard": map[string]interface{}{"display_name.lower": map[string]interface{}{"value": pattern, "boost": 2.0}}},
					{"wildcard": map[string]interface{}{"bio.lower": map[string]interface{}{"value": pattern}}},
				},
				"minimum_should_match": 1,
				"must_not": []map[string]interface{}{
					{"term": map[string]interface{}{"user_id": excludeUserID}},
				},
			},
		},
		"_source": []string{"user_id"},
		"size":    clampLimit(limit),
	}
	return c.searchIDs(ctx, IndexProfiles, "user_id", query)
}

// SearchStrains returns strain IDs whose name contains term
func (c *Client) SearchStrains(ctx context.Context, term string, limit int) ([]string, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"wildcard": map[string]interface{}{
				"name.lower": map[string]interface{}{"value": wildcardPattern(term)},
			},
		},
		"_source": []string{"id"},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
		"size": clampLimit(limit),
	}
	return c.searchIDs(ctx, IndexStrains, "id", query)
}

func (c *Client) searchIDs(ctx context.Context, index, idField string, query map[string]interface{}) ([]string, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res, "searching "+index); err != nil {
		return nil, err
	}

	var searchResp struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(searchResp.Hits.Hits))
	for _, hit := range searchResp.Hits.Hits {
		if id, ok := hit.Source[idField].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// wildcardPattern builds a lowercase *term* pattern with wildcard
// metacharacters in term escaped
func wildcardPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return "*" + replacer.Replace(strings.ToLower(strings.TrimSpace(term))) + "*"
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxResults {
		return MaxResults
	}
	return limit
}

func responseError(res *esapi.Response, action string) error {
	if !res.IsError() {
		return nil
	}
	raw, _ := io.ReadAll(res.Body)
	var errResp map[string]interface{}
	if err := json.Unmarshal(raw, &errResp); err != nil {
		return fmt.Errorf("error %s: [%s]", action, res.Status())
	}
	return fmt.Errorf("error %s: [%s] %v", action, res.Status(), errResp["error"])
}
