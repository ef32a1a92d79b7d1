// package services defines clients for the HTTP APIs the pipeline consumes
//
// setlist.fm (API key), Spotify (OAuth2)
package services

import (
	"context"

	"github.com/hazelfield/encore/internal/models"
	"golang.org/x/oauth2"
)

// SetlistProvider defines the interface for the concert setlist database.
type SetlistProvider interface {
	// SearchSetlists returns candidate setlists for an artist and date.
	// Returns shared.ErrNoSetlistFound when the API has nothing for the query.
	SearchSetlists(ctx context.Context, artist, date string) ([]models.Setlist, error)

	// Name returns the name of the provider (e.g., "setlist.fm")
	Name() string
}

// Catalog defines the interface for the streaming service's search and playlist operations.
type Catalog interface {
	// Authenticate establishes an authenticated session.
	// Returns an error wrapping shared.ErrAuthFailed if credentials are rejected.
	Authenticate(ctx context.Context) error

	// SearchTracks searches the catalog and returns up to limit candidate tracks
	// in the API's own relevance order.
	SearchTracks(ctx context.Context, title, artist string, limit int) ([]models.Track, error)

	// TopTracks resolves an artist by name and returns up to limit of their
	// most popular tracks. Returns an empty slice when no catalog artist
	// matches the name closely enough.
	TopTracks(ctx context.Context, artist string, limit int) ([]models.Track, error)

	// FindPlaylistByName returns the authenticated user's playlist with the
	// exact given name, or shared.ErrPlaylistNotFound.
	FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error)

	// CreatePlaylist creates a new playlist for the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error)

	// ReplaceTracks replaces a playlist's contents with the given track URIs in order.
	ReplaceTracks(ctx context.Context, playlistID string, uris []string) error

	// AddTracks appends track URIs to a playlist in order.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by catalogs that bootstrap credentials through
// a browser authorization flow.
type OAuthService interface {
	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// ExchangeCode trades an authorization code for a token.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// OAuthConfig returns the underlying OAuth2 configuration for the callback handler.
	OAuthConfig() *oauth2.Config
}
