package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/hazelfield/encore/internal/services"
	"github.com/hazelfield/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	httpClient := &http.Client{Timeout: 30 * time.Second}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var setlists services.SetlistProvider
	if svc, err := services.NewSetlistFMService(config.Credentials.SetlistFM.APIKey); err == nil {
		setlists = svc
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			catalog = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Setlists:   setlists,
		Catalog:    catalog,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "encore",
		Usage:    "Build streaming playlists from concert setlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) || errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Fatalf("%v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}
