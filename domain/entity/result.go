package entity

// QuerySpec carries one threat hunting request from the HTTP layer into the
// core. It is constructed per request and consumed once.
type QuerySpec struct {
	QueryDSL  map[string]interface{} `json:"query_dsl"`
	LogSource string                 `json:"log_source,omitempty"`
	TimeRange string                 `json:"time_range,omitempty"`
	Size      int                    `json:"size,omitempty"`
}

// NormalizedEvent is the uniform event record produced from one search hit.
// The raw record is retained for drill-down in the UI.
type NormalizedEvent struct {
	Timestamp string                 `json:"timestamp"`
	Index     string                 `json:"index"`
	Source    string                 `json:"source"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	RawData   map[string]interface{} `json:"raw_data"`
}

// HuntResult is the structured outcome of a threat hunting query. Failures
// are recovered into the Error field; Error is empty on success and the JSON
// field is omitted, which is the discriminant the HTTP layer keys on.
type HuntResult struct {
	TotalHits       int                    `json:"total_hits"`
	QueryTimeMillis int64                  `json:"query_time_ms"`
	Events          []NormalizedEvent      `json:"events"`
	Aggregations    map[string]interface{} `json:"aggregations"`
	IndicesSearched []string               `json:"indices_searched,omitempty"`
	Error           string                 `json:"error,omitempty"`

	callerFault bool
}

// Failed reports whether the query was recovered from a failure.
func (r *HuntResult) Failed() bool { return r.Error != "" }

// CallerFault reports whether the failure stems from caller input (a
// structurally invalid query tree or time range) rather than the engine.
func (r *HuntResult) CallerFault() bool { return r.callerFault }

// MarkCallerFault flags the result as a caller-input failure.
func (r *HuntResult) MarkCallerFault() { r.callerFault = true }

// TimelineBucket is one time slot of the hourly event histogram.
type TimelineBucket struct {
	Timestamp interface{} `json:"timestamp"`
	Count     int64       `json:"count"`
}

// SecurityMetrics aggregates event counts by severity, source and hour over a
// time window. Computed fresh per request, never cached.
type SecurityMetrics struct {
	TotalEvents  int              `json:"total_events"`
	ThreatLevels map[string]int64 `json:"threat_levels"`
	LogSources   map[string]int64 `json:"log_sources"`
	Timeline     []TimelineBucket `json:"timeline"`
	TimeRange    string           `json:"time_range"`
	Error        string           `json:"error,omitempty"`
}

// Failed reports whether metrics computation was recovered from a failure.
// A legitimately empty window (zero events) is not a failure.
func (m *SecurityMetrics) Failed() bool { return m.Error != "" }

// ClusterHealth summarizes the state of the Elasticsearch cluster.
type ClusterHealth struct {
	Status              string `json:"status"`
	ClusterName         string `json:"cluster_name,omitempty"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	NumberOfDataNodes   int    `json:"number_of_data_nodes"`
	ActivePrimaryShards int    `json:"active_primary_shards"`
	ActiveShards        int    `json:"active_shards"`
	RelocatingShards    int    `json:"relocating_shards"`
	InitializingShards  int    `json:"initializing_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`
	Error               string `json:"error,omitempty"`
}
