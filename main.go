package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-viewer/api"
	"weather-viewer/collector"
	"weather-viewer/config"
	"weather-viewer/datasource"
	"weather-viewer/logging"
	"weather-viewer/telemetry"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	configFile := flag.String("config", "config.json", "Path to configuration file")
	port := flag.Int("port", 0, "Port to run the server on (overrides PORT)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := telemetry.Setup("weather-viewer", cfg.ZipkinEndpoint)
	if err != nil {
		logger.Fatalw("Failed to set up tracing", "error", err)
	}

	source := newForecastSource(cfg, logger)

	store := api.NewForecastStore()
	loader := collector.NewLoader(source, store, cfg.City, cfg.LocationLabel, logger)
	loader.SetFetchTimeout(cfg.FetchTimeout)

	server := api.NewServer(store, loader, cfg.Port, logger)

	// Set up channel for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Initial load, tied to the lifetime of the process
	stopLoader := loader.Start(context.Background())

	// Start the API server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Errorw("Server stopped", "error", err)
			shutdownChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdownChan
	logger.Infow("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("Error during server shutdown", "error", err)
	}
	stopLoader()
	if err := shutdownTracing(ctx); err != nil {
		logger.Errorw("Error flushing traces", "error", err)
	}

	logger.Info("Shutdown complete")
}

// newForecastSource builds the OpenWeatherMap provider, rate limited when configured
func newForecastSource(cfg *config.Config, logger *zap.SugaredLogger) datasource.ForecastSource {
	owmProvider := datasource.NewOpenWeatherMapProvider(cfg.APIKey,
		datasource.WithBaseURL(cfg.BaseURL),
		datasource.WithUnits(cfg.Units),
	)

	if cfg.RateLimitRPS <= 0 {
		return owmProvider
	}

	logger.Infow("Applied rate limiting to OpenWeatherMap provider",
		"rps", cfg.RateLimitRPS,
		"burst", cfg.RateLimitBurst)
	return datasource.NewRateLimitedForecastSource(owmProvider, cfg.RateLimitRPS, cfg.RateLimitBurst)
}
