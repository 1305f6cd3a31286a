package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
)

// Config defines the Elasticsearch connection settings for the dashboard.
type Config struct {
	Addresses          []string      `json:"addresses" mapstructure:"addresses"`
	Username           string        `json:"username" mapstructure:"username"`
	Password           string        `json:"password" mapstructure:"password"`
	InsecureSkipVerify bool          `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	MaxRetries         int           `json:"max_retries" mapstructure:"max_retries"`
	MaxIdleConns       int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	PingTimeout        time.Duration `json:"ping_timeout" mapstructure:"ping_timeout"`
}

// setDefaults fills in production defaults for unset fields.
func setDefaults(config *Config) {
	if len(config.Addresses) == 0 {
		config.Addresses = []string{"http://localhost:9200"}
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.PingTimeout == 0 {
		config.PingTimeout = 5 * time.Second
	}
}

// Client is the live Elasticsearch gateway. It is read-only: the dashboard
// searches and aggregates but never indexes. Safe for concurrent use by
// multiple in-flight requests; pooling belongs to the underlying transport.
type Client struct {
	es     *elasticsearch.Client
	logger *zap.Logger
	config *Config
}

var _ repository.SearchGateway = (*Client)(nil)

// NewClient creates the live gateway. Construction only validates that a
// client can be built; reachability is probed separately so that startup can
// select the degraded gateway instead of failing.
func NewClient(logger *zap.Logger, config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("elasticsearch configuration is required")
	}
	setDefaults(config)

	cfg := elasticsearch.Config{
		Addresses:     config.Addresses,
		Username:      config.Username,
		Password:      config.Password,
		MaxRetries:    config.MaxRetries,
		RetryOnStatus: []int{502, 503, 504, 429},
	}

	if config.InsecureSkipVerify {
		cfg.Transport = &http.Transport{
			MaxIdleConns:    config.MaxIdleConns,
			IdleConnTimeout: 90 * time.Second,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create elasticsearch client")
	}

	return &Client{
		es:     es,
		logger: logger.With(zap.String("component", "elasticsearch-gateway")),
		config: config,
	}, nil
}

// CheckConnection issues an info call and reports reachability.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.config.PingTimeout)
	defer cancel()

	req := esapi.InfoRequest{}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		c.logger.Error("Failed to connect to Elasticsearch", zap.Error(err))
		return false
	}
	defer res.Body.Close()

	if res.IsError() {
		c.logger.Error("Elasticsearch info request failed", zap.String("status", res.Status()))
		return false
	}

	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err == nil {
		c.logger.Info("Connected to Elasticsearch", zap.String("version", info.Version.Number))
	}
	return true
}

// ClusterHealth fetches the cluster health summary. On failure the returned
// summary carries status "unknown" plus the error description.
func (c *Client) ClusterHealth(ctx context.Context) (*entity.ClusterHealth, error) {
	req := esapi.ClusterHealthRequest{}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		c.logger.Error("Cluster health request failed", zap.Error(err))
		return unknownHealth(err), errors.Wrap(entity.ErrEngineUnavailable, err.Error())
	}
	defer res.Body.Close()

	if res.IsError() {
		err := errors.Errorf("cluster health check failed: %s", res.Status())
		c.logger.Error("Cluster health check failed", zap.String("status", res.Status()))
		return unknownHealth(err), err
	}

	var health entity.ClusterHealth
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return unknownHealth(err), errors.Wrap(err, "failed to decode cluster health")
	}

	c.logger.Debug("Cluster health checked",
		zap.String("status", health.Status),
		zap.Int("nodes", health.NumberOfNodes),
	)
	return &health, nil
}

// Search executes one search body against the given index expression with a
// bounded per-call timeout.
func (c *Client) Search(ctx context.Context, indices string, body map[string]interface{}, timeout time.Duration) (*repository.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, errors.Wrap(err, "failed to encode search query")
	}

	req := esapi.SearchRequest{
		Index: []string{indices},
		Body:  &buf,
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, errors.Wrap(entity.ErrEngineUnavailable, err.Error())
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("search failed with status: %s", res.Status())
	}

	var result repository.SearchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}
	return &result, nil
}

// Close releases the connection handle. The v8 client keeps no resources
// beyond its transport, so there is nothing to tear down explicitly.
func (c *Client) Close() error {
	c.logger.Info("Elasticsearch gateway closed")
	return nil
}

func unknownHealth(err error) *entity.ClusterHealth {
	return &entity.ClusterHealth{
		Status: "unknown",
		Error:  err.Error(),
	}
}
