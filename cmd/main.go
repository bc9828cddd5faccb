package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/mangax/internal/repositories"
	"github.com/desertthunder/mangax/internal/services"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/urfave/cli/v3"
)

// EnvConfigPath points at the config file; it defaults to ./config.toml.
const EnvConfigPath = "MANGAX_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
			config.ApplyEnv()
		}
	} else {
		config.ApplyEnv()
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	catalogService, err := services.NewCatalogServiceFromConfig(config.Catalog, logger)
	if err != nil {
		logger.Warn("ignoring saved catalog headers", "path", config.Catalog.HeadersPath, "error", err)
		config.Catalog.HeadersPath = ""
		catalogService, _ = services.NewCatalogServiceFromConfig(config.Catalog, logger)
	}

	apiService := services.NewAPIService(config.Catalog.BaseURL, &http.Client{Timeout: config.Catalog.Timeout()}).
		WithHeaders(catalogService.Headers())

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalogService,
		API:        apiService,
		Logger:     logger,
	}

	if db, err := shared.OpenCache(config.Database); err == nil {
		defer db.Close()
		cache := repositories.NewCachedCatalog(catalogService, db, config.Catalog.CacheTTL(), logger)
		opts.Catalog = cache
		opts.Cache = cache
	} else {
		logger.Warn("chapter cache disabled", "path", config.Database.Path, "error", err)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "mangax",
		Usage:    "Browse a manga catalog and read chapters from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		logger.Fatalf("application error: %v", err)
	}
}
