package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
	"github.com/isectech/soc-dashboard/pkg/metrics"
)

func newMetricsUC(gw repository.SearchGateway) *SecurityMetricsUseCase {
	return NewSecurityMetricsUseCase(
		entity.NewRegistry(),
		&stubProvider{gateway: gw},
		zap.NewNop(),
		metrics.NewCollector("test"),
		10*time.Second,
	)
}

func TestComputeZeroHitsIsNotAnError(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{Total: repository.HitsTotal{Value: 0}},
		},
	}

	m := newMetricsUC(gw).Compute(context.Background(), "24h")

	assert.False(t, m.Failed())
	assert.Empty(t, m.Error)
	assert.Equal(t, 0, m.TotalEvents)
	assert.Empty(t, m.ThreatLevels)
	assert.Empty(t, m.LogSources)
	assert.Empty(t, m.Timeline)
	assert.Equal(t, "24h", m.TimeRange)
}

func TestComputeQueriesUnionWithThreeFacets(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{Total: repository.HitsTotal{Value: 0}},
		},
	}

	newMetricsUC(gw).Compute(context.Background(), "1h")

	assert.Equal(t, entity.NewRegistry().ResolveIndices(""), gw.lastIndices)
	assert.Equal(t, 0, gw.lastBody["size"])
	assert.Equal(t, 10*time.Second, gw.lastTimeout)

	aggs := gw.lastBody["aggs"].(map[string]interface{})
	require.Contains(t, aggs, "threat_levels")
	require.Contains(t, aggs, "log_sources")
	require.Contains(t, aggs, "timeline")

	histogram := aggs["timeline"].(map[string]interface{})["date_histogram"].(map[string]interface{})
	assert.Equal(t, "1h", histogram["calendar_interval"])
	assert.Equal(t, 0, histogram["min_doc_count"])
}

func TestComputeMapsBucketsBackToSources(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{Total: repository.HitsTotal{Value: 42}},
			Aggregations: map[string]interface{}{
				"threat_levels": map[string]interface{}{
					"buckets": []interface{}{
						map[string]interface{}{"key": "high", "doc_count": float64(12)},
						map[string]interface{}{"key": "low", "doc_count": float64(30)},
					},
				},
				"log_sources": map[string]interface{}{
					"buckets": []interface{}{
						map[string]interface{}{"key": "paloalto-2024.01.15", "doc_count": float64(25)},
						map[string]interface{}{"key": "winlogbeat-2024.01.15", "doc_count": float64(10)},
						map[string]interface{}{"key": "mystery-index", "doc_count": float64(7)},
					},
				},
				"timeline": map[string]interface{}{
					"buckets": []interface{}{
						map[string]interface{}{"key": float64(1705312800000), "doc_count": float64(5)},
						map[string]interface{}{"key": float64(1705316400000), "doc_count": float64(0)},
					},
				},
			},
		},
	}

	m := newMetricsUC(gw).Compute(context.Background(), "24h")

	require.False(t, m.Failed())
	assert.Equal(t, 42, m.TotalEvents)
	assert.Equal(t, map[string]int64{"high": 12, "low": 30}, m.ThreatLevels)
	assert.Equal(t, map[string]int64{
		"palo_alto":      25,
		"windows_events": 10,
		"unknown":        7,
	}, m.LogSources)

	require.Len(t, m.Timeline, 2)
	assert.Equal(t, int64(5), m.Timeline[0].Count)
	assert.Equal(t, int64(0), m.Timeline[1].Count)
}

func TestComputeRecoversEngineFailure(t *testing.T) {
	gw := &stubGateway{err: errors.Wrap(entity.ErrEngineUnavailable, "dial tcp: connection refused")}

	m := newMetricsUC(gw).Compute(context.Background(), "24h")

	assert.True(t, m.Failed())
	assert.Equal(t, 0, m.TotalEvents)
	assert.Empty(t, m.ThreatLevels)
	assert.Empty(t, m.LogSources)
	assert.Empty(t, m.Timeline)
	assert.NotEmpty(t, m.Error)
}
