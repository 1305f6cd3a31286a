package repository

import (
	"context"
	"time"

	"github.com/isectech/soc-dashboard/domain/entity"
)

// SearchResult is the decoded body of an Elasticsearch search response.
type SearchResult struct {
	Took         int                    `json:"took"`
	TimedOut     bool                   `json:"timed_out"`
	Hits         SearchHits             `json:"hits"`
	Aggregations map[string]interface{} `json:"aggregations,omitempty"`
}

// SearchHits carries the hit envelope of a search response.
type SearchHits struct {
	Total HitsTotal   `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// HitsTotal is Elasticsearch's total-hit count with its relation qualifier.
type HitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// SearchHit is one matching document.
type SearchHit struct {
	Index  string                 `json:"_index"`
	ID     string                 `json:"_id"`
	Source map[string]interface{} `json:"_source"`
}

// GatewayProvider hands out the shared process-wide gateway, constructing it
// on first use.
type GatewayProvider interface {
	Gateway(ctx context.Context) SearchGateway
}

// SearchGateway is the contract between the dashboard core and the search
// engine. Two implementations exist: the live Elasticsearch client and a
// degraded gateway used when the engine is unreachable at startup. Both obey
// the same structured-error discipline, so downstream code never needs a
// separate path for "not initialized" versus "reachable but erroring".
// Implementations must be safe for concurrent use; connection pooling is the
// engine client's responsibility.
type SearchGateway interface {
	// CheckConnection issues a lightweight liveness call. It returns false,
	// never an error, on any connection failure.
	CheckConnection(ctx context.Context) bool

	// ClusterHealth reports cluster status, node counts and shard counts. On
	// failure the returned health has status "unknown" and an error
	// description alongside the non-nil error.
	ClusterHealth(ctx context.Context) (*entity.ClusterHealth, error)

	// Search executes one search body against the given index expression with
	// a per-call timeout. Failures (timeout, refusal, engine error) surface as
	// a single generic error; no retries happen at this layer.
	Search(ctx context.Context, indices string, body map[string]interface{}, timeout time.Duration) (*SearchResult, error)

	// Close releases the underlying connection handle.
	Close() error
}
