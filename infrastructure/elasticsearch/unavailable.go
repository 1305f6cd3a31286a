package elasticsearch

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
)

const unavailableMessage = "Elasticsearch not available"

// UnavailableGateway is the degraded SearchGateway variant selected when the
// engine is unreachable at startup. Every operation returns the same
// "unavailable" shape so dashboard code needs no separate not-initialized
// path.
type UnavailableGateway struct {
	logger *zap.Logger
}

var _ repository.SearchGateway = (*UnavailableGateway)(nil)

// NewUnavailableGateway creates the degraded gateway.
func NewUnavailableGateway(logger *zap.Logger) *UnavailableGateway {
	return &UnavailableGateway{
		logger: logger.With(zap.String("component", "elasticsearch-gateway-unavailable")),
	}
}

// CheckConnection always reports disconnected.
func (g *UnavailableGateway) CheckConnection(ctx context.Context) bool {
	return false
}

// ClusterHealth reports the unavailable shape.
func (g *UnavailableGateway) ClusterHealth(ctx context.Context) (*entity.ClusterHealth, error) {
	return &entity.ClusterHealth{
		Status: "unknown",
		Error:  unavailableMessage,
	}, errors.Wrap(entity.ErrEngineUnavailable, unavailableMessage)
}

// Search always fails with the unavailable error.
func (g *UnavailableGateway) Search(ctx context.Context, indices string, body map[string]interface{}, timeout time.Duration) (*repository.SearchResult, error) {
	g.logger.Debug("Search rejected, engine unavailable", zap.String("indices", indices))
	return nil, errors.Wrap(entity.ErrEngineUnavailable, unavailableMessage)
}

// Close is a no-op.
func (g *UnavailableGateway) Close() error {
	return nil
}
