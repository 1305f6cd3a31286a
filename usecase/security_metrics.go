package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
	"github.com/isectech/soc-dashboard/domain/service"
	"github.com/isectech/soc-dashboard/pkg/metrics"
)

// SecurityMetricsUseCase computes the dashboard's fixed three-facet metric
// set: severity distribution, per-source distribution and an hourly timeline.
type SecurityMetricsUseCase struct {
	registry  *entity.Registry
	provider  repository.GatewayProvider
	logger    *zap.Logger
	collector *metrics.Collector
	timeout   time.Duration
}

// NewSecurityMetricsUseCase creates the metrics aggregator. timeout bounds
// each outbound search call.
func NewSecurityMetricsUseCase(
	registry *entity.Registry,
	provider repository.GatewayProvider,
	logger *zap.Logger,
	collector *metrics.Collector,
	timeout time.Duration,
) *SecurityMetricsUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SecurityMetricsUseCase{
		registry:  registry,
		provider:  provider,
		logger:    logger.With(zap.String("component", "security-metrics")),
		collector: collector,
		timeout:   timeout,
	}
}

// Compute runs one size=0 aggregation search over the union of all log source
// patterns. A zero-hit window is a legitimate empty result, not a failure;
// engine failures are recovered into a zeroed result with an error field.
func (uc *SecurityMetricsUseCase) Compute(ctx context.Context, timeRange string) *entity.SecurityMetrics {
	normalized, err := NormalizeTimeRange(timeRange)
	if err != nil {
		return emptyMetrics(timeRange, err.Error())
	}
	timeRange = normalized

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"@timestamp": map[string]interface{}{
								"gte": fmt.Sprintf("now-%s", timeRange),
							},
						},
					},
				},
			},
		},
		"size": 0,
		"aggs": map[string]interface{}{
			"threat_levels": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "threat.severity.keyword",
					"size":  10,
				},
			},
			"log_sources": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "_index",
					"size":  10,
				},
			},
			"timeline": map[string]interface{}{
				"date_histogram": map[string]interface{}{
					"field":             "@timestamp",
					"calendar_interval": "1h",
					"min_doc_count":     0,
				},
			},
		},
	}

	indices := uc.registry.ResolveIndices("")

	start := time.Now()
	res, err := uc.provider.Gateway(ctx).Search(ctx, indices, body, uc.timeout)
	uc.collector.ObserveSearch("security_metrics", time.Since(start), err)

	if err != nil {
		uc.logger.Error("Security metrics query failed", zap.Error(err))
		return emptyMetrics(timeRange, err.Error())
	}

	result := &entity.SecurityMetrics{
		TotalEvents:  res.Hits.Total.Value,
		ThreatLevels: map[string]int64{},
		LogSources:   map[string]int64{},
		Timeline:     []entity.TimelineBucket{},
		TimeRange:    timeRange,
	}

	for _, b := range facetBuckets(res.Aggregations, "threat_levels") {
		result.ThreatLevels[stringField(b.Key)] = b.Count
	}

	for _, b := range facetBuckets(res.Aggregations, "log_sources") {
		sourceID := uc.registry.MapIndexToSource(stringField(b.Key))
		if sourceID == entity.SourceUnknown {
			uc.collector.UnmappedIndices.Inc()
			uc.logger.Warn("Bucket from unmapped index", zap.Any("key", b.Key))
		}
		result.LogSources[sourceID] += b.Count
	}

	for _, b := range facetBuckets(res.Aggregations, "timeline") {
		result.Timeline = append(result.Timeline, entity.TimelineBucket{
			Timestamp: b.Key,
			Count:     b.Count,
		})
	}

	uc.logger.Info("Security metrics computed",
		zap.String("time_range", timeRange),
		zap.Int("total_events", result.TotalEvents),
	)
	return result
}

// facetBuckets extracts one facet's bucket list from a raw aggregation
// response, tolerating absent or oddly shaped facets.
func facetBuckets(aggs map[string]interface{}, name string) []service.BucketCount {
	facet, ok := aggs[name].(map[string]interface{})
	if !ok {
		return nil
	}
	buckets, ok := facet["buckets"].([]interface{})
	if !ok {
		return nil
	}
	return service.NormalizeBuckets(buckets)
}

func emptyMetrics(timeRange, errMsg string) *entity.SecurityMetrics {
	return &entity.SecurityMetrics{
		TotalEvents:  0,
		ThreatLevels: map[string]int64{},
		LogSources:   map[string]int64{},
		Timeline:     []entity.TimelineBucket{},
		TimeRange:    timeRange,
		Error:        errMsg,
	}
}
