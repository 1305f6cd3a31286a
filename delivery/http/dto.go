package http

// ThreatHuntingRequestDTO is the body of POST /api/threat-hunting.
type ThreatHuntingRequestDTO struct {
	QueryDSL  map[string]interface{} `json:"query_dsl" binding:"required"`
	LogSource string                 `json:"log_source"`
	TimeRange string                 `json:"time_range"`
	Size      int                    `json:"size"`
}

// SecurityMetricsRequestDTO is the body of POST /api/security-metrics.
type SecurityMetricsRequestDTO struct {
	TimeRange string `json:"time_range"`
}

// ThreatOverviewDTO summarizes event counts by severity class for the
// dashboard landing page.
type ThreatOverviewDTO struct {
	HighThreats  int64 `json:"high_threats"`
	MediumAlerts int64 `json:"medium_alerts"`
	LowEvents    int64 `json:"low_events"`
	Resolved     int64 `json:"resolved"`
}

// SourceStatusDTO reports per-source activity for the dashboard landing page.
type SourceStatusDTO struct {
	EventsCount        int64  `json:"events_count"`
	Status             string `json:"status"`
	ActivityPercentage int    `json:"activity_percentage"`
}

// DashboardDataDTO is the body of GET /api/dashboard-data.
type DashboardDataDTO struct {
	ThreatOverview   ThreatOverviewDTO          `json:"threat_overview"`
	LogSourcesStatus map[string]SourceStatusDTO `json:"log_sources_status"`
	TimelineData     []TimelinePointDTO         `json:"timeline_data"`
}

// TimelinePointDTO is one hourly point of the dashboard timeline.
type TimelinePointDTO struct {
	Timestamp interface{} `json:"timestamp"`
	Count     int64       `json:"count"`
}
