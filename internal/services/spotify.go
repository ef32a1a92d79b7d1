// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hazelfield/encore/internal/match"
	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// addTracksBatchSize is the API's cap on URIs per add/replace call.
	addTracksBatchSize = 100

	// artistSearchLimit is how many artist candidates TopTracks considers.
	artistSearchLimit = 3

	// minArtistSimilarity is the floor for accepting an artist search hit
	// as the performer named in the setlist.
	minArtistSimilarity = 0.6
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifySearchResponse represents the track portion of a search result.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyArtistSearchResponse represents the artist portion of a search result.
type SpotifyArtistSearchResponse struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
		Total int             `json:"total"`
	} `json:"artists"`
}

// SpotifyTopTracksResponse represents an artist's top tracks.
type SpotifyTopTracksResponse struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Public       bool                 `json:"public"`
	Tracks       simplePlaylistTracks `json:"tracks"`
	ExternalURLs externalURLs         `json:"external_urls"`
	URI          string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyService implements [Catalog] for Spotify API interactions.
// Uses [oauth2] with a stored refresh token so runs need no user interaction.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string

	refreshToken string
	userID       string
}

// NewSpotifyService creates a Spotify client from the given credentials.
// Requires client_id and client_secret; refresh_token may be empty when the
// client is only used for the authorization flow.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:       config,
		httpClient:   http.DefaultClient,
		baseURL:      spotifyBaseURL,
		refreshToken: credentials["refresh_token"],
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetHTTPClient replaces the HTTP client used for API requests and for the
// OAuth2 token exchange. A nil client is ignored.
func (s *SpotifyService) SetHTTPClient(client *http.Client) {
	if client == nil {
		return
	}
	s.httpClient = client
}

// HTTPClient returns the client used for API requests.
func (s *SpotifyService) HTTPClient() *http.Client {
	return s.httpClient
}

// oauthContext injects the service's HTTP client so token refresh and code
// exchange go through it as well.
func (s *SpotifyService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// Authenticate mints an access token from the stored refresh token and
// verifies it by fetching the user profile.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	if s.refreshToken == "" {
		return fmt.Errorf("%w: no refresh token, run `encore spotify auth` first", shared.ErrNotAuthenticated)
	}

	source := s.config.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: s.refreshToken})
	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: failed to refresh token: %v", shared.ErrAuthFailed, err)
	}

	s.token = token

	user, err := s.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("%w: token rejected: %v", shared.ErrAuthFailed, err)
	}
	s.userID = user.ID

	return nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades an authorization code for a token carrying a refresh token.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// OAuthConfig returns the underlying OAuth2 configuration.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated HTTP request to the Spotify API.
// body, when non-nil, is JSON encoded.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var payload *bytes.Buffer
	if body != nil {
		payload = &bytes.Buffer{}
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify rejected the token (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchTracks searches the catalog for a track by title and artist,
// returning up to limit candidates in the API's relevance order.
func (s *SpotifyService) SearchTracks(ctx context.Context, title, artist string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	query := title
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, "GET", "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, convertTrack(item))
	}

	return tracks, nil
}

// SearchArtists searches the catalog for artists by name, returning up to
// limit candidates in the API's relevance order.
func (s *SpotifyService) SearchArtists(ctx context.Context, name string, limit int) ([]SpotifyArtist, error) {
	if limit <= 0 {
		limit = artistSearchLimit
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artist")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var response SpotifyArtistSearchResponse
	if err := s.doRequest(ctx, "GET", "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return response.Artists.Items, nil
}

// TopTracks resolves an artist by name and returns up to limit of their most
// popular tracks. The best of the top search hits must clear a similarity
// floor; without a close enough hit no tracks are returned, so a misheard
// opener name does not pull in a stranger's songs.
func (s *SpotifyService) TopTracks(ctx context.Context, artist string, limit int) ([]models.Track, error) {
	candidates, err := s.SearchArtists(ctx, artist, artistSearchLimit)
	if err != nil {
		return nil, err
	}

	var best *SpotifyArtist
	bestScore := -1.0
	for i := range candidates {
		if score := match.Similarity(artist, candidates[i].Name); score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	if best == nil || bestScore < minArtistSimilarity {
		return nil, nil
	}

	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=from_token", url.PathEscape(best.ID))
	var response SpotifyTopTracksResponse
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	items := response.Tracks
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, convertTrack(item))
	}

	return tracks, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// AllPlaylists pages through every playlist of the authenticated user.
func (s *SpotifyService) AllPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	limit, offset := 50, 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			playlists = append(playlists, convertPlaylist(item))
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return playlists, nil
}

// FindPlaylistByName returns the user's playlist with the exact given name.
// Returns shared.ErrPlaylistNotFound when no playlist matches.
func (s *SpotifyService) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := s.AllPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	for i := range playlists {
		if playlists[i].Name == name {
			return &playlists[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// CreatePlaylist creates a new playlist for the authenticated user.
// Descriptions over 300 characters are truncated to the API's limit.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	if s.userID == "" {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	body := map[string]interface{}{
		"name":        name,
		"description": shared.Truncate(description, 300),
		"public":      public,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(s.userID))
	if err := s.doRequest(ctx, "POST", endpoint, body, &created); err != nil {
		return nil, err
	}

	playlist := convertPlaylist(created)
	return &playlist, nil
}

// ReplaceTracks replaces a playlist's contents with the given URIs in order.
// The first batch goes through the replace endpoint to clear prior contents;
// remaining batches are appended.
func (s *SpotifyService) ReplaceTracks(ctx context.Context, playlistID string, uris []string) error {
	first := uris
	if len(first) > addTracksBatchSize {
		first = uris[:addTracksBatchSize]
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]interface{}{"uris": first}
	if err := s.doRequest(ctx, "PUT", endpoint, body, nil); err != nil {
		return err
	}

	if len(uris) > addTracksBatchSize {
		return s.AddTracks(ctx, playlistID, uris[addTracksBatchSize:])
	}

	return nil
}

// AddTracks appends track URIs to a playlist in order, batching at the API's cap.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += addTracksBatchSize {
		end := start + addTracksBatchSize
		if end > len(uris) {
			end = len(uris)
		}

		body := map[string]interface{}{"uris": uris[start:end]}
		if err := s.doRequest(ctx, "POST", endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}

// convertTrack maps an API track to the domain form.
func convertTrack(item SpotifyTrack) models.Track {
	track := models.Track{
		ID:         item.ID,
		URI:        item.URI,
		Title:      item.Name,
		Album:      item.Album.Name,
		Popularity: item.Popularity,
	}
	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	return track
}

// convertPlaylist maps an API playlist to the domain form.
func convertPlaylist(item SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Public:      item.Public,
		TrackCount:  item.Tracks.Total,
		URL:         item.ExternalURLs.Spotify,
	}
}
