// Package archive keeps completed battles in Elasticsearch for reporting.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/services/battle"
)

// Config holds configuration options for the Elasticsearch archive
type Config struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	// Transport overrides the HTTP transport, for tests
	Transport http.RoundTripper
}

const battleMapping = `{
	"mappings": {
		"properties": {
			"battle_id": { "type": "long" },
			"category": { "type": "keyword" },
			"tier": { "type": "long" },
			"channel_ref": { "type": "keyword" },
			"has_winner": { "type": "boolean" },
			"winner_entrant_id": { "type": "long" },
			"winner_user_id": { "type": "keyword" },
			"winner_votes": { "type": "long" },
			"paid_entrants": { "type": "long" },
			"total_pool": { "type": "scaled_float", "scaling_factor": 100 },
			"winner_payout": { "type": "scaled_float", "scaling_factor": 100 },
			"platform_fee": { "type": "scaled_float", "scaling_factor": 100 },
			"created_at": { "type": "date" },
			"completed_at": { "type": "date" },
			"standings": {
				"type": "nested",
				"properties": {
					"entrant_id": { "type": "long" },
					"user_id": { "type": "keyword" },
					"username": { "type": "keyword" },
					"display_number": { "type": "integer" },
					"submission_ref": { "type": "keyword" },
					"votes": { "type": "long" },
					"winner": { "type": "boolean" }
				}
			}
		}
	}
}`

// ElasticsearchArchive indexes battle results into monthly indices
type ElasticsearchArchive struct {
	client      *elasticsearch.Client
	indexPrefix string
	logger      *logging.Logger

	mu      sync.Mutex
	created map[string]bool
}

var _ battle.Archiver = (*ElasticsearchArchive)(nil)

// NewElasticsearchArchive creates the client. Indices are created on first use.
func NewElasticsearchArchive(cfg Config, logger *logging.Logger) (*ElasticsearchArchive, error) {
	if logger == nil {
		logger = logging.Default
	}
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: cfg.Transport,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := cfg.IndexPrefix
	if prefix == "" {
		prefix = "trackbattle"
	}

	return &ElasticsearchArchive{
		client:      client,
		indexPrefix: prefix,
		logger:      logger.With("ARCHIVE"),
		created:     make(map[string]bool),
	}, nil
}

// IndexFor returns the monthly index a result completed at t belongs to
func (a *ElasticsearchArchive) IndexFor(r *entities.BattleResult) string {
	return a.indexPrefix + "_battles_" + r.CompletedAt.UTC().Format("2006-01")
}

// ArchiveResult indexes a completed battle. The battle id is the document id,
// so archiving the same result twice overwrites rather than duplicates.
func (a *ElasticsearchArchive) ArchiveResult(ctx context.Context, b *entities.Battle, r *entities.BattleResult) error {
	index := a.IndexFor(r)
	if err := a.ensureIndex(ctx, index); err != nil {
		return err
	}

	body, err := json.Marshal(newESBattleResult(b, r))
	if err != nil {
		return fmt.Errorf("error marshaling battle result: %w", err)
	}

	res, err := a.client.Index(
		index,
		bytes.NewReader(body),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(strconv.FormatInt(r.BattleID, 10)),
		a.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("error indexing battle result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing battle result: %s", res.String())
	}

	a.logger.Debug("Archived battle %d to %s", r.BattleID, index)
	return nil
}

// ensureIndex creates index with the battle mapping if it doesn't exist yet
func (a *ElasticsearchArchive) ensureIndex(ctx context.Context, index string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.created[index] {
		return nil
	}

	res, err := a.client.Indices.Exists([]string{index}, a.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		req := esapi.IndicesCreateRequest{
			Index: index,
			Body:  bytes.NewReader([]byte(battleMapping)),
		}
		res, err := req.Do(ctx, a.client)
		if err != nil {
			return fmt.Errorf("error creating index %s: %w", index, err)
		}
		defer res.Body.Close()

		// Another instance may have created it in between
		if res.IsError() && res.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("error creating index %s: %s", index, res.String())
		}
		a.logger.Info("Created index %s", index)
	}

	a.created[index] = true
	return nil
}
