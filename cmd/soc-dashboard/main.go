// iSECTECH SOC Dashboard Service - Main Entry Point
// Unified security log search and threat metrics backend
// Copyright (c) 2024 iSECTECH. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/isectech/soc-dashboard/config"
	httpdelivery "github.com/isectech/soc-dashboard/delivery/http"
	"github.com/isectech/soc-dashboard/domain/entity"
	"github.com/isectech/soc-dashboard/infrastructure/elasticsearch"
	"github.com/isectech/soc-dashboard/pkg/logging"
	"github.com/isectech/soc-dashboard/pkg/metrics"
	"github.com/isectech/soc-dashboard/usecase"
)

const serviceName = "soc-dashboard"

// Application wires the dashboard components together.
type Application struct {
	config     *config.Config
	logger     *logging.Logger
	provider   *elasticsearch.Provider
	httpServer *httpdelivery.DashboardHTTPServer

	shutdownCh chan os.Signal
}

func main() {
	app := &Application{
		shutdownCh: make(chan os.Signal, 1),
	}

	if err := app.Initialize(); err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	go func() {
		if err := app.httpServer.Start(); err != nil {
			app.logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	app.WaitForShutdown()

	if err := app.Shutdown(); err != nil {
		app.logger.Error("Error during shutdown", zap.Error(err))
		os.Exit(1)
	}

	app.logger.Info("Application shutdown complete")
}

// Initialize initializes all application components.
func (app *Application) Initialize() error {
	var err error

	app.config, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.logger, err = logging.NewLogger(app.config.Logging)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	app.logger.Info("Starting SOC Dashboard Service",
		zap.String("service", serviceName),
		zap.String("version", app.config.Service.Version),
		zap.String("environment", app.config.Service.Environment),
		zap.Strings("elasticsearch_addresses", app.config.Elasticsearch.Connection.Addresses),
	)

	registry := entity.NewRegistry()
	collector := metrics.NewCollector(app.config.Metrics.Namespace)

	app.provider = elasticsearch.NewProvider(app.logger.Logger, &app.config.Elasticsearch.Connection)

	huntingUC := usecase.NewThreatHuntingUseCase(
		registry,
		app.provider,
		app.logger.Logger,
		collector,
		app.config.Elasticsearch.HuntingTimeout,
	)
	metricsUC := usecase.NewSecurityMetricsUseCase(
		registry,
		app.provider,
		app.logger.Logger,
		collector,
		app.config.Elasticsearch.MetricsTimeout,
	)

	app.httpServer = httpdelivery.NewDashboardHTTPServer(
		registry,
		app.provider,
		huntingUC,
		metricsUC,
		collector,
		app.logger.Logger,
		app.config.HTTP.Port,
	)

	return nil
}

// WaitForShutdown blocks until an interrupt or termination signal arrives.
func (app *Application) WaitForShutdown() {
	signal.Notify(app.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-app.shutdownCh
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
}

// Shutdown gracefully stops the HTTP server and closes the gateway handle.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Service.ShutdownTimeout)
	defer cancel()

	if err := app.httpServer.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if err := app.provider.Close(); err != nil {
		app.logger.Error("Failed to close Elasticsearch gateway", zap.Error(err))
	}

	app.logger.Cleanup()
	return nil
}
