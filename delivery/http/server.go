package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/domain/repository"
	"github.com/isectech/soc-dashboard/pkg/metrics"
	"github.com/isectech/soc-dashboard/usecase"
)

// DashboardHTTPServer implements the HTTP REST API of the SOC dashboard.
type DashboardHTTPServer struct {
	router    *gin.Engine
	registry  *entity.Registry
	provider  repository.GatewayProvider
	huntingUC *usecase.ThreatHuntingUseCase
	metricsUC *usecase.SecurityMetricsUseCase
	collector *metrics.Collector
	logger    *zap.Logger
	server    *http.Server
	port      string
}

// NewDashboardHTTPServer creates the HTTP server and registers its routes.
func NewDashboardHTTPServer(
	registry *entity.Registry,
	provider repository.GatewayProvider,
	huntingUC *usecase.ThreatHuntingUseCase,
	metricsUC *usecase.SecurityMetricsUseCase,
	collector *metrics.Collector,
	logger *zap.Logger,
	port string,
) *DashboardHTTPServer {
	s := &DashboardHTTPServer{
		registry:  registry,
		provider:  provider,
		huntingUC: huntingUC,
		metricsUC: metricsUC,
		collector: collector,
		logger:    logger.With(zap.String("component", "http-server")),
		port:      port,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures middleware and all HTTP routes.
func (s *DashboardHTTPServer) setupRoutes() {
	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	s.router.GET("/metrics", gin.WrapH(s.collector.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/log-sources", s.getLogSources)
		api.GET("/elasticsearch/health", s.elasticsearchHealth)
		api.POST("/threat-hunting", s.executeThreatHunting)
		api.POST("/security-metrics", s.getSecurityMetrics)
		api.GET("/dashboard-data", s.getDashboardData)
	}
}

// HTTP handlers

// healthCheck returns service liveness.
func (s *DashboardHTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "soc-dashboard",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// getLogSources returns the static source registry, keyed by identifier.
func (s *DashboardHTTPServer) getLogSources(c *gin.Context) {
	sources := make(map[string]entity.LogSource)
	for _, src := range s.registry.Sources() {
		sources[src.ID] = src
	}
	c.JSON(http.StatusOK, sources)
}

// elasticsearchHealth reports engine reachability and cluster health.
// 200 connected, 503 disconnected, 500 when the probe itself errors.
func (s *DashboardHTTPServer) elasticsearchHealth(c *gin.Context) {
	ctx := c.Request.Context()
	gateway := s.provider.Gateway(ctx)

	if !gateway.CheckConnection(ctx) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "disconnected",
			"error":  "Unable to connect to Elasticsearch",
		})
		return
	}

	health, err := gateway.ClusterHealth(ctx)
	if err != nil {
		s.logger.Error("Elasticsearch health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "connected",
		"cluster_health": health,
	})
}

// executeThreatHunting runs a threat hunting query. The core never raises
// past its boundary: the result's error shape selects 400 for caller faults
// and 500 for everything else.
func (s *DashboardHTTPServer) executeThreatHunting(c *gin.Context) {
	var req ThreatHuntingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid threat hunting request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in query DSL", "details": err.Error()})
		return
	}

	result := s.huntingUC.Execute(c.Request.Context(), entity.QuerySpec{
		QueryDSL:  req.QueryDSL,
		LogSource: req.LogSource,
		TimeRange: req.TimeRange,
		Size:      req.Size,
	})

	if result.Failed() {
		status := http.StatusInternalServerError
		if result.CallerFault() {
			status = http.StatusBadRequest
		}
		c.JSON(status, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getSecurityMetrics computes the dashboard metric set for a time window.
func (s *DashboardHTTPServer) getSecurityMetrics(c *gin.Context) {
	var req SecurityMetricsRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	if _, err := usecase.NormalizeTimeRange(req.TimeRange); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.metricsUC.Compute(c.Request.Context(), req.TimeRange)
	if result.Failed() {
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Middleware

// corsMiddleware adds CORS headers for the dashboard UI.
func (s *DashboardHTTPServer) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin,Content-Type,Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags each request with a correlation id.
func (s *DashboardHTTPServer) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware logs requests and feeds the prometheus collector.
func (s *DashboardHTTPServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		s.collector.ObserveRequest(c.Request.Method, path, strconv.Itoa(statusCode), latency)

		s.logger.Info("HTTP Request",
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status_code", statusCode),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// Server management

// Start starts the HTTP server.
func (s *DashboardHTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.port),
		Handler: s.router,
	}

	s.logger.Info("Starting SOC dashboard HTTP server", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *DashboardHTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down SOC dashboard HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the gin router for testing purposes.
func (s *DashboardHTTPServer) GetRouter() *gin.Engine {
	return s.router
}
