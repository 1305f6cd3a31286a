package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
	"github.com/isectech/soc-dashboard/domain/service"
	"github.com/isectech/soc-dashboard/pkg/metrics"
)

const (
	// DefaultTimeRange bounds queries that omit a range.
	DefaultTimeRange = "24h"

	// DefaultHuntSize caps threat hunting result sets.
	DefaultHuntSize = 1000
)

// timeRangePattern matches relative durations such as "1h", "24h", "7d".
var timeRangePattern = regexp.MustCompile(`^[0-9]+[smhdw]$`)

// ThreatHuntingUseCase orchestrates index routing, time-range injection,
// search execution and result normalization into one end-to-end query.
type ThreatHuntingUseCase struct {
	registry   *entity.Registry
	provider   repository.GatewayProvider
	extractor  *service.FieldExtractor
	normalizer *service.AggregationNormalizer
	logger     *zap.Logger
	collector  *metrics.Collector
	timeout    time.Duration
}

// NewThreatHuntingUseCase creates the threat hunting executor. timeout bounds
// each outbound search call.
func NewThreatHuntingUseCase(
	registry *entity.Registry,
	provider repository.GatewayProvider,
	logger *zap.Logger,
	collector *metrics.Collector,
	timeout time.Duration,
) *ThreatHuntingUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ThreatHuntingUseCase{
		registry:   registry,
		provider:   provider,
		extractor:  service.NewFieldExtractor(),
		normalizer: service.NewAggregationNormalizer(),
		logger:     logger.With(zap.String("component", "threat-hunting")),
		collector:  collector,
		timeout:    timeout,
	}
}

// Execute runs one threat hunting query. Every failure is recovered locally
// into a structured result; this method never returns an error to its caller.
func (uc *ThreatHuntingUseCase) Execute(ctx context.Context, spec entity.QuerySpec) *entity.HuntResult {
	indices := uc.registry.ResolveIndices(spec.LogSource)

	size := spec.Size
	if size <= 0 {
		size = DefaultHuntSize
	}

	timeRange, err := NormalizeTimeRange(spec.TimeRange)
	if err != nil {
		return callerFaultResult(err)
	}

	body, err := InjectTimeFilter(spec.QueryDSL, timeRange, size)
	if err != nil {
		uc.logger.Warn("Rejected structurally invalid query", zap.Error(err))
		return callerFaultResult(err)
	}

	start := time.Now()
	res, err := uc.provider.Gateway(ctx).Search(ctx, indices, body, uc.timeout)
	elapsed := time.Since(start)
	uc.collector.ObserveSearch("threat_hunting", elapsed, err)

	if err != nil {
		uc.logger.Error("Threat hunting query failed",
			zap.String("indices", indices),
			zap.Error(err))
		return failureResult(err)
	}

	result := &entity.HuntResult{
		TotalHits:       res.Hits.Total.Value,
		QueryTimeMillis: elapsed.Round(time.Millisecond).Milliseconds(),
		Events:          uc.normalizeHits(res.Hits.Hits),
		Aggregations:    map[string]interface{}{},
		IndicesSearched: strings.Split(indices, ","),
	}

	if len(res.Aggregations) > 0 {
		result.Aggregations = uc.normalizer.Normalize(res.Aggregations)
	}

	uc.logger.Info("Threat hunting query completed",
		zap.String("indices", indices),
		zap.Int("total_hits", result.TotalHits),
		zap.Int64("query_time_ms", result.QueryTimeMillis),
	)
	return result
}

// normalizeHits maps raw search hits into the uniform event schema.
func (uc *ThreatHuntingUseCase) normalizeHits(hits []repository.SearchHit) []entity.NormalizedEvent {
	events := make([]entity.NormalizedEvent, 0, len(hits))
	for _, hit := range hits {
		source := uc.registry.MapIndexToSource(hit.Index)
		if source == entity.SourceUnknown {
			uc.collector.UnmappedIndices.Inc()
			uc.logger.Warn("Hit from unmapped index", zap.String("index", hit.Index))
		}

		events = append(events, entity.NormalizedEvent{
			Timestamp: stringField(hit.Source["@timestamp"]),
			Index:     hit.Index,
			Source:    source,
			Severity:  uc.extractor.ExtractSeverity(hit.Source),
			Message:   uc.extractor.ExtractMessage(hit.Source),
			RawData:   hit.Source,
		})
	}
	return events
}

// NormalizeTimeRange validates a relative time range expression. Empty input
// falls back to DefaultTimeRange; malformed input is a caller fault.
func NormalizeTimeRange(timeRange string) (string, error) {
	if timeRange == "" {
		return DefaultTimeRange, nil
	}
	if !timeRangePattern.MatchString(timeRange) {
		return "", errors.Wrapf(entity.ErrInvalidQuery, "invalid time range %q", timeRange)
	}
	return timeRange, nil
}

// InjectTimeFilter rewrites a caller-supplied query body to add a bounded
// @timestamp filter while preserving the caller's own clauses. A query
// already carrying a top-level bool keeps it; anything else (including an
// absent query) is wrapped as the sole member of a new bool.must list. The
// range clause is appended to bool.filter, which is additive: applying this
// twice yields two range clauses. Result size and descending-timestamp sort
// are set unconditionally, overwriting caller values, because the dashboard
// always wants newest-first bounded results. The input tree is never mutated.
func InjectTimeFilter(query map[string]interface{}, timeRange string, size int) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(query)+3)
	for k, v := range query {
		out[k] = v
	}

	boolNode, err := rebuildBoolNode(query["query"])
	if err != nil {
		return nil, err
	}

	timeFilter := map[string]interface{}{
		"range": map[string]interface{}{
			"@timestamp": map[string]interface{}{
				"gte": fmt.Sprintf("now-%s", timeRange),
				"lte": "now",
			},
		},
	}

	filter, err := clauseList(boolNode, "filter")
	if err != nil {
		return nil, err
	}
	boolNode["filter"] = append(filter, timeFilter)

	out["query"] = map[string]interface{}{"bool": boolNode}
	out["size"] = size
	out["sort"] = []interface{}{
		map[string]interface{}{"@timestamp": map[string]interface{}{"order": "desc"}},
	}
	return out, nil
}

// rebuildBoolNode produces a fresh bool node honoring the caller's query:
// an existing bool is copied, any other clause becomes the sole must member.
func rebuildBoolNode(queryClause interface{}) (map[string]interface{}, error) {
	if queryClause == nil {
		return map[string]interface{}{
			"must": []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}},
		}, nil
	}

	clause, ok := queryClause.(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(entity.ErrInvalidQuery, "query clause must be an object")
	}

	existing, hasBool := clause["bool"]
	if !hasBool {
		return map[string]interface{}{
			"must": []interface{}{clause},
		}, nil
	}

	boolClause, ok := existing.(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(entity.ErrInvalidQuery, "bool clause must be an object")
	}

	node := make(map[string]interface{}, len(boolClause)+1)
	for k, v := range boolClause {
		node[k] = v
	}
	return node, nil
}

// clauseList returns a copy of the named clause list, validating its type.
func clauseList(node map[string]interface{}, name string) ([]interface{}, error) {
	raw, ok := node[name]
	if !ok {
		return []interface{}{}, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Wrapf(entity.ErrInvalidQuery, "%s clause must be a list", name)
	}
	out := make([]interface{}, len(list))
	copy(out, list)
	return out, nil
}

func callerFaultResult(err error) *entity.HuntResult {
	r := failureResult(err)
	r.MarkCallerFault()
	return r
}

func failureResult(err error) *entity.HuntResult {
	return &entity.HuntResult{
		TotalHits:       0,
		QueryTimeMillis: 0,
		Events:          []entity.NormalizedEvent{},
		Aggregations:    map[string]interface{}{},
		Error:           err.Error(),
	}
}

func stringField(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
