package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./encore.db" {
			t.Errorf("expected database path ./encore.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Matcher.Threshold != 0.8 {
			t.Errorf("expected matcher threshold 0.8, got %f", config.Matcher.Threshold)
		}

		if config.Input.Source != "csv" {
			t.Errorf("expected input source csv, got %s", config.Input.Source)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id placeholder, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Playlists.TopTracks != 5 {
			t.Errorf("expected 5 fallback top tracks, got %d", config.Playlists.TopTracks)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.setlistfm]
api_key = "test_setlist_key"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
refresh_token = "test_refresh"

[credentials.google]
service_account_file = "/path/to/sa.json"
sheet_id = "sheet123"
sheet_range = "Events!A:F"

[input]
source = "sheet"
csv_path = "/custom/events.csv"

[matcher]
threshold = 0.75
search_limit = 5

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.SetlistFM.APIKey != "test_setlist_key" {
			t.Errorf("expected setlistfm api_key test_setlist_key, got %s", config.Credentials.SetlistFM.APIKey)
		}

		if config.Input.Source != "sheet" {
			t.Errorf("expected input source sheet, got %s", config.Input.Source)
		}

		if config.Matcher.Threshold != 0.75 {
			t.Errorf("expected threshold 0.75, got %f", config.Matcher.Threshold)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.RefreshToken = "saved_refresh_token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.RefreshToken != "saved_refresh_token" {
			t.Errorf("expected refresh token to round trip, got %s", loaded.Credentials.Spotify.RefreshToken)
		}
	})
}
