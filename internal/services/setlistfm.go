// setlist.fm API implementation of [SetlistProvider]
//
// Response types based on https://api.setlist.fm/docs/1.0/index.html
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
	"golang.org/x/time/rate"
)

const setlistFMBaseURL = "https://api.setlist.fm/rest/1.0"

// setlistFMRate caps outgoing requests at the API's documented 2 req/s.
var setlistFMRate = rate.Limit(2)

// SetlistFMCountry represents a country within a city.
type SetlistFMCountry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SetlistFMCity represents the city a venue is located in.
type SetlistFMCity struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	State   string           `json:"state"`
	Country SetlistFMCountry `json:"country"`
}

// SetlistFMVenue represents a concert venue.
type SetlistFMVenue struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	City SetlistFMCity `json:"city"`
}

// SetlistFMArtist represents a performing artist.
type SetlistFMArtist struct {
	MBID string `json:"mbid"`
	Name string `json:"name"`
}

// SetlistFMSong represents one performed song.
type SetlistFMSong struct {
	Name  string           `json:"name"`
	Cover *SetlistFMArtist `json:"cover,omitempty"`
	Tape  bool             `json:"tape,omitempty"`
}

// SetlistFMSet represents one run of songs within a setlist.
// Named, non-encore sets are opening acts; unnamed and encore sets belong to the headliner.
type SetlistFMSet struct {
	Name   string          `json:"name,omitempty"`
	Encore int             `json:"encore,omitempty"`
	Songs  []SetlistFMSong `json:"song"`
}

type setlistFMSets struct {
	Set []SetlistFMSet `json:"set"`
}

type setlistFMTour struct {
	Name string `json:"name"`
}

// SetlistFMSetlist represents one concert setlist.
type SetlistFMSetlist struct {
	ID        string          `json:"id"`
	EventDate string          `json:"eventDate"` // dd-MM-yyyy
	Artist    SetlistFMArtist `json:"artist"`
	Venue     SetlistFMVenue  `json:"venue"`
	Tour      *setlistFMTour  `json:"tour,omitempty"`
	Sets      setlistFMSets   `json:"sets"`
	URL       string          `json:"url"`
}

// SetlistFMSearchResponse represents a paginated setlist search result.
type SetlistFMSearchResponse struct {
	Type         string             `json:"type"`
	ItemsPerPage int                `json:"itemsPerPage"`
	Page         int                `json:"page"`
	Total        int                `json:"total"`
	Setlists     []SetlistFMSetlist `json:"setlist"`
}

// SetlistFMService implements [SetlistProvider] for the setlist.fm REST API.
// Requests are rate limited to stay within the free tier.
type SetlistFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSetlistFMService creates a setlist.fm client with the given API key.
func NewSetlistFMService(apiKey string) (*SetlistFMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: setlist.fm api key", shared.ErrMissingCredentials)
	}

	return &SetlistFMService{
		apiKey:     apiKey,
		baseURL:    setlistFMBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(setlistFMRate, 1),
	}, nil
}

func (s *SetlistFMService) Name() string {
	return "setlist.fm"
}

// SetHTTPClient replaces the HTTP client used for API requests.
// A nil client is ignored.
func (s *SetlistFMService) SetHTTPClient(client *http.Client) {
	if client == nil {
		return
	}
	s.httpClient = client
}

// HTTPClient returns the client used for API requests.
func (s *SetlistFMService) HTTPClient() *http.Client {
	return s.httpClient
}

// doRequest performs a rate-limited, authenticated GET against the setlist.fm API.
func (s *SetlistFMService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNoSetlistFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: setlist.fm rejected the api key (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: setlist.fm returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchSetlists queries setlists by artist name and event date.
// The date is accepted as YYYY-MM-DD and converted to the API's dd-MM-yyyy form.
func (s *SetlistFMService) SearchSetlists(ctx context.Context, artist, date string) ([]models.Setlist, error) {
	apiDate, err := toSetlistFMDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	params := url.Values{}
	params.Set("artistName", artist)
	params.Set("date", apiDate)
	params.Set("p", "1")

	var response SetlistFMSearchResponse
	if err := s.doRequest(ctx, "/search/setlists?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	if len(response.Setlists) == 0 {
		return nil, shared.ErrNoSetlistFound
	}

	setlists := make([]models.Setlist, 0, len(response.Setlists))
	for _, raw := range response.Setlists {
		setlists = append(setlists, parseSetlist(raw))
	}

	return setlists, nil
}

// parseSetlist converts an API setlist into the domain form, splitting sets
// into opening acts and the headliner's run.
func parseSetlist(raw SetlistFMSetlist) models.Setlist {
	setlist := models.Setlist{
		ID:        raw.ID,
		Artist:    raw.Artist.Name,
		Venue:     raw.Venue.Name,
		City:      raw.Venue.City.Name,
		EventDate: fromSetlistFMDate(raw.EventDate),
		URL:       raw.URL,
	}

	var headliner models.SetAct

	for _, set := range raw.Sets.Set {
		songs := make([]string, 0, len(set.Songs))
		for _, song := range set.Songs {
			if song.Tape || song.Name == "" {
				continue
			}
			songs = append(songs, song.Name)
		}

		// Openers billed with no recorded songs are kept; the pipeline
		// substitutes the performer's top catalog tracks for them.
		if isOpenerSet(set) {
			setlist.Acts = append(setlist.Acts, models.SetAct{
				Performer: set.Name,
				Songs:     songs,
				Opener:    true,
			})
			continue
		}
		if len(songs) == 0 {
			continue
		}

		headliner.Performer = raw.Artist.Name
		headliner.Songs = append(headliner.Songs, songs...)
	}

	if len(headliner.Songs) > 0 {
		setlist.Acts = append(setlist.Acts, headliner)
	}

	return setlist
}

// isOpenerSet reports whether a set belongs to an opening act rather than
// the headliner. Encore sets and sets named "Main Set" always belong to
// the headliner.
func isOpenerSet(set SetlistFMSet) bool {
	if set.Encore > 0 || set.Name == "" {
		return false
	}
	name := strings.ToLower(set.Name)
	return name != "main set" && name != "encore" && name != "main"
}

// toSetlistFMDate converts YYYY-MM-DD to the API's dd-MM-yyyy form.
func toSetlistFMDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	return t.Format("02-01-2006"), nil
}

// fromSetlistFMDate converts the API's dd-MM-yyyy form back to YYYY-MM-DD.
// Unparseable dates pass through unchanged.
func fromSetlistFMDate(date string) string {
	t, err := time.Parse("02-01-2006", date)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02")
}
