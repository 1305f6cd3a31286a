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

func newHuntingUC(gw repository.SearchGateway) *ThreatHuntingUseCase {
	return NewThreatHuntingUseCase(
		entity.NewRegistry(),
		&stubProvider{gateway: gw},
		zap.NewNop(),
		metrics.NewCollector("test"),
		30*time.Second,
	)
}

func TestInjectTimeFilterWrapsBareQuery(t *testing.T) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"message": "malware"},
		},
	}

	got, err := InjectTimeFilter(query, "1h", 100)
	require.NoError(t, err)

	boolNode := got["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolNode["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Equal(t, map[string]interface{}{"match": map[string]interface{}{"message": "malware"}}, must[0])

	filter := boolNode["filter"].([]interface{})
	require.Len(t, filter, 1)
	rangeClause := filter[0].(map[string]interface{})["range"].(map[string]interface{})["@timestamp"].(map[string]interface{})
	assert.Equal(t, "now-1h", rangeClause["gte"])
	assert.Equal(t, "now", rangeClause["lte"])

	assert.Equal(t, 100, got["size"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"@timestamp": map[string]interface{}{"order": "desc"}},
	}, got["sort"])
}

func TestInjectTimeFilterAbsentQueryBecomesMatchAll(t *testing.T) {
	got, err := InjectTimeFilter(map[string]interface{}{}, "24h", 10)
	require.NoError(t, err)

	boolNode := got["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolNode["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
}

func TestInjectTimeFilterPreservesExistingBool(t *testing.T) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"src.ip": "10.0.0.1"}},
				},
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"action": "deny"}},
				},
			},
		},
	}

	got, err := InjectTimeFilter(query, "7d", 50)
	require.NoError(t, err)

	boolNode := got["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolNode["must"].([]interface{}), 1)

	// Existing filter is kept, the range clause is appended after it.
	filter := boolNode["filter"].([]interface{})
	require.Len(t, filter, 2)
	assert.Contains(t, filter[0].(map[string]interface{}), "term")
	assert.Contains(t, filter[1].(map[string]interface{}), "range")
}

func TestInjectTimeFilterAppendOnlyNonIdempotence(t *testing.T) {
	// Applying the injector twice yields two range clauses, never a merge.
	once, err := InjectTimeFilter(map[string]interface{}{}, "1h", 10)
	require.NoError(t, err)
	twice, err := InjectTimeFilter(once, "1h", 10)
	require.NoError(t, err)

	boolNode := twice["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolNode["filter"].([]interface{}), 2)
}

func TestInjectTimeFilterDoesNotMutateInput(t *testing.T) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{},
			},
		},
	}

	_, err := InjectTimeFilter(query, "1h", 10)
	require.NoError(t, err)

	_, hasSize := query["size"]
	assert.False(t, hasSize)
	boolNode := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Empty(t, boolNode["filter"].([]interface{}))
}

func TestInjectTimeFilterRejectsInvalidShapes(t *testing.T) {
	cases := []map[string]interface{}{
		{"query": "not-an-object"},
		{"query": map[string]interface{}{"bool": "not-an-object"}},
		{"query": map[string]interface{}{"bool": map[string]interface{}{"filter": "not-a-list"}}},
	}

	for _, query := range cases {
		_, err := InjectTimeFilter(query, "1h", 10)
		assert.ErrorIs(t, err, entity.ErrInvalidQuery)
	}
}

func TestNormalizeTimeRange(t *testing.T) {
	got, err := NormalizeTimeRange("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeRange, got)

	for _, valid := range []string{"1h", "6h", "24h", "7d", "30d", "90m", "2w"} {
		got, err := NormalizeTimeRange(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	}

	for _, invalid := range []string{"yesterday", "-1h", "1 h", "h1", "24"} {
		_, err := NormalizeTimeRange(invalid)
		assert.ErrorIs(t, err, entity.ErrInvalidQuery, "range %q", invalid)
	}
}

func TestExecuteRoutesSingleSourceAndMapsEvents(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{
				Total: repository.HitsTotal{Value: 2},
				Hits: []repository.SearchHit{
					{
						Index: "paloalto-2024.01.15",
						Source: map[string]interface{}{
							"@timestamp": "2024-01-15T10:00:00Z",
							"threat":     map[string]interface{}{"severity": "High"},
							"message":    "blocked outbound connection",
						},
					},
					{
						Index:  "mystery-index-01",
						Source: map[string]interface{}{},
					},
				},
			},
		},
	}

	uc := newHuntingUC(gw)
	result := uc.Execute(context.Background(), entity.QuerySpec{
		QueryDSL:  map[string]interface{}{"query": map[string]interface{}{"match_all": map[string]interface{}{}}},
		LogSource: "palo_alto",
		TimeRange: "1h",
	})

	require.False(t, result.Failed())
	assert.Equal(t, "paloalto-*", gw.lastIndices)
	assert.Equal(t, []string{"paloalto-*"}, result.IndicesSearched)
	assert.Equal(t, 2, result.TotalHits)

	// Every event resolves to the requested source or the unknown sentinel.
	require.Len(t, result.Events, 2)
	assert.Equal(t, "palo_alto", result.Events[0].Source)
	assert.Equal(t, "high", result.Events[0].Severity)
	assert.Equal(t, "blocked outbound connection", result.Events[0].Message)
	assert.Equal(t, entity.SourceUnknown, result.Events[1].Source)
	assert.Equal(t, "low", result.Events[1].Severity)
	assert.Equal(t, "Security event detected", result.Events[1].Message)

	// The injected body carries size and sort directives.
	assert.Equal(t, DefaultHuntSize, gw.lastBody["size"])
	assert.NotNil(t, gw.lastBody["sort"])
	assert.Equal(t, 30*time.Second, gw.lastTimeout)
}

func TestExecuteUnknownSourceSearchesUnion(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{Total: repository.HitsTotal{Value: 0}},
		},
	}

	uc := newHuntingUC(gw)
	result := uc.Execute(context.Background(), entity.QuerySpec{
		QueryDSL:  map[string]interface{}{},
		LogSource: "not-a-real-source",
	})

	require.False(t, result.Failed())
	assert.Len(t, result.IndicesSearched, 7)
	assert.Equal(t, entity.NewRegistry().ResolveIndices(""), gw.lastIndices)
}

func TestExecuteNormalizesAggregations(t *testing.T) {
	gw := &stubGateway{
		connected: true,
		result: &repository.SearchResult{
			Hits: repository.SearchHits{Total: repository.HitsTotal{Value: 0}},
			Aggregations: map[string]interface{}{
				"by_action": map[string]interface{}{
					"buckets": []interface{}{
						map[string]interface{}{"key": "deny", "doc_count": float64(9)},
					},
				},
			},
		},
	}

	uc := newHuntingUC(gw)
	result := uc.Execute(context.Background(), entity.QuerySpec{QueryDSL: map[string]interface{}{}})

	require.False(t, result.Failed())
	assert.Contains(t, result.Aggregations, "by_action")
}

func TestExecuteRecoversEngineFailure(t *testing.T) {
	gw := &stubGateway{err: errors.Wrap(entity.ErrEngineUnavailable, "connection refused")}

	uc := newHuntingUC(gw)
	result := uc.Execute(context.Background(), entity.QuerySpec{QueryDSL: map[string]interface{}{}})

	require.True(t, result.Failed())
	assert.False(t, result.CallerFault())
	assert.Equal(t, 0, result.TotalHits)
	assert.Empty(t, result.Events)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteCallerFaults(t *testing.T) {
	gw := &stubGateway{connected: true}
	uc := newHuntingUC(gw)

	// Malformed time range.
	result := uc.Execute(context.Background(), entity.QuerySpec{
		QueryDSL:  map[string]interface{}{},
		TimeRange: "yesterday",
	})
	require.True(t, result.Failed())
	assert.True(t, result.CallerFault())

	// Structurally invalid query tree.
	result = uc.Execute(context.Background(), entity.QuerySpec{
		QueryDSL: map[string]interface{}{"query": "not-an-object"},
	})
	require.True(t, result.Failed())
	assert.True(t, result.CallerFault())
	assert.Empty(t, gw.lastIndices, "invalid input must never reach the engine")
}
