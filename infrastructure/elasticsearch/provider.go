package elasticsearch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/repository"
)

// Provider owns the single process-wide gateway handle. The gateway is
// constructed at most once, on first use, and shared by all request handlers;
// sync.Once guards against duplicate concurrent construction. When the engine
// is unreachable the provider hands out the degraded gateway instead, so
// callers always receive a usable SearchGateway.
type Provider struct {
	logger *zap.Logger
	config *Config

	once    sync.Once
	gateway repository.SearchGateway
}

// NewProvider creates the provider. No connection is attempted until Gateway
// is first called.
func NewProvider(logger *zap.Logger, config *Config) *Provider {
	return &Provider{
		logger: logger,
		config: config,
	}
}

// Gateway returns the shared gateway, constructing it on first call.
func (p *Provider) Gateway(ctx context.Context) repository.SearchGateway {
	p.once.Do(func() {
		client, err := NewClient(p.logger, p.config)
		if err != nil {
			p.logger.Warn("Failed to initialize Elasticsearch client, running degraded",
				zap.Error(err))
			p.gateway = NewUnavailableGateway(p.logger)
			return
		}

		if !client.CheckConnection(ctx) {
			p.logger.Warn("Elasticsearch unreachable at startup, running degraded",
				zap.Strings("addresses", p.config.Addresses))
			p.gateway = NewUnavailableGateway(p.logger)
			return
		}

		p.gateway = client
	})
	return p.gateway
}

// Close releases the gateway if it was ever constructed.
func (p *Provider) Close() error {
	if p.gateway == nil {
		return nil
	}
	return p.gateway.Close()
}
