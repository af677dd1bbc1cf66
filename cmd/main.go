package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/labelcopy/internal/services"
	"github.com/desertthunder/labelcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var external services.CatalogService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret); err == nil {
			external = svc
		}
	}

	imports := services.NewImportsAPIService(config.Imports.BaseURL, config.Imports.APIKey, nil)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Imports:  imports,
		External: external,
		Logger:   logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "labelcopy",
		Usage:    "Reconcile label catalog data with external music metadata",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
