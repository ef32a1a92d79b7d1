package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Input       InputConfig       `toml:"input"`
	Matcher     MatcherConfig     `toml:"matcher"`
	Playlists   PlaylistConfig    `toml:"playlists"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	SetlistFM SetlistFMConfig `toml:"setlistfm"`
	Spotify   SpotifyConfig   `toml:"spotify"`
	Google    GoogleConfig    `toml:"google"`
}

// SetlistFMConfig contains setlist.fm API credentials.
type SetlistFMConfig struct {
	APIKey string `toml:"api_key"`
}

// SpotifyConfig contains Spotify API credentials.
//
// RefreshToken is populated by `encore spotify auth` and used on subsequent runs
// to mint access tokens without user interaction.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	RefreshToken string `toml:"refresh_token"`
}

// Map converts the Spotify credentials to the map form consumed by services.NewSpotifyService.
func (c SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
		"refresh_token": c.RefreshToken,
	}
}

// Update stores the refresh token from a completed OAuth flow.
func (c *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidArgument)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("%w: token has no refresh token", ErrInvalidCredentials)
	}
	c.RefreshToken = token.RefreshToken
	return nil
}

// GoogleConfig contains Google Sheets access settings.
type GoogleConfig struct {
	ServiceAccountFile string `toml:"service_account_file"`
	SheetID            string `toml:"sheet_id"`
	SheetRange         string `toml:"sheet_range"`
}

// InputConfig selects the event source.
type InputConfig struct {
	Source  string `toml:"source"` // "csv" or "sheet"
	CSVPath string `toml:"csv_path"`
}

// MatcherConfig contains fuzzy matching settings.
type MatcherConfig struct {
	Threshold   float64 `toml:"threshold"`
	SearchLimit int     `toml:"search_limit"`
}

// PlaylistConfig contains playlist creation settings.
type PlaylistConfig struct {
	Public bool `toml:"public"`
	DryRun bool `toml:"dry_run"`

	// TopTracks is the number of top tracks substituted for an opener
	// the setlist bills without recording any songs. 0 disables the fallback.
	TopTracks int `toml:"top_tracks"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
