package usecase

import (
	"context"
	"time"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
)

// stubGateway records the last search and replays a canned response.
type stubGateway struct {
	connected bool
	result    *repository.SearchResult
	err       error

	lastIndices string
	lastBody    map[string]interface{}
	lastTimeout time.Duration
}

func (s *stubGateway) CheckConnection(ctx context.Context) bool { return s.connected }

func (s *stubGateway) ClusterHealth(ctx context.Context) (*entity.ClusterHealth, error) {
	if !s.connected {
		return &entity.ClusterHealth{Status: "unknown", Error: "stub offline"}, entity.ErrEngineUnavailable
	}
	return &entity.ClusterHealth{Status: "green", NumberOfNodes: 3}, nil
}

func (s *stubGateway) Search(ctx context.Context, indices string, body map[string]interface{}, timeout time.Duration) (*repository.SearchResult, error) {
	s.lastIndices = indices
	s.lastBody = body
	s.lastTimeout = timeout
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubGateway) Close() error { return nil }

// stubProvider hands out a fixed gateway.
type stubProvider struct {
	gateway repository.SearchGateway
}

func (p *stubProvider) Gateway(ctx context.Context) repository.SearchGateway { return p.gateway }
