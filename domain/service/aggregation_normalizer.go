package service

// BucketCount is one normalized aggregation bucket.
type BucketCount struct {
	Key   interface{} `json:"key"`
	Count int64       `json:"count"`
}

// AggregationNormalizer converts engine-specific aggregation shapes into a
// uniform mapping from facet name to normalized result.
type AggregationNormalizer struct{}

// NewAggregationNormalizer creates an aggregation normalizer.
func NewAggregationNormalizer() *AggregationNormalizer {
	return &AggregationNormalizer{}
}

// Normalize processes each named facet: bucketed results become ordered
// {key, count} pairs, single-value metrics become their scalar, and anything
// else passes through unchanged. Shapes not explicitly modeled are tolerated
// rather than rejected.
func (n *AggregationNormalizer) Normalize(raw map[string]interface{}) map[string]interface{} {
	processed := make(map[string]interface{}, len(raw))

	for name, data := range raw {
		agg, ok := data.(map[string]interface{})
		if !ok {
			processed[name] = data
			continue
		}

		if buckets, ok := agg["buckets"].([]interface{}); ok {
			processed[name] = NormalizeBuckets(buckets)
			continue
		}
		if value, ok := agg["value"]; ok {
			processed[name] = value
			continue
		}
		processed[name] = data
	}

	return processed
}

// NormalizeBuckets converts a raw bucket list into ordered BucketCount pairs.
func NormalizeBuckets(buckets []interface{}) []BucketCount {
	out := make([]BucketCount, 0, len(buckets))
	for _, b := range buckets {
		bucket, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, BucketCount{
			Key:   bucket["key"],
			Count: asInt64(bucket["doc_count"]),
		})
	}
	return out
}

// asInt64 copes with JSON numbers decoding as float64.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
