// Command forecast fetches the configured city's forecast once and prints the
// current conditions, the hourly strip and the daily list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"weather-viewer/config"
	"weather-viewer/datasource"
	"weather-viewer/logging"
	"weather-viewer/projector"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	configFile := flag.String("config", "config.json", "Path to configuration file")
	city := flag.String("city", "", "City to fetch (overrides CITY)")
	asJSON := flag.Bool("json", false, "Print the view model as JSON")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *city != "" {
		cfg.City = *city
		cfg.LocationLabel = *city
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider := datasource.NewOpenWeatherMapProvider(cfg.APIKey,
		datasource.WithBaseURL(cfg.BaseURL),
		datasource.WithUnits(cfg.Units),
	)

	resp, err := provider.FetchForecast(ctx, cfg.City)
	if err != nil {
		logger.Errorw("Couldn't load forecast", "city", cfg.City, "kind", datasource.KindOf(err), "error", err)
		os.Exit(1)
	}

	view := projector.ProjectFor(resp, cfg.LocationLabel)

	if *asJSON {
		prettyJSON, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			logger.Fatalw("Failed to encode view model", "error", err)
		}
		fmt.Println(string(prettyJSON))
		return
	}

	if err := render(os.Stdout, view, cfg.Units); err != nil {
		logger.Fatalw("Failed to print forecast", "error", err)
	}
}
