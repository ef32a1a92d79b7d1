// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

// MockSetlistProvider is a test double for [services.SetlistProvider].
// Setlists maps "artist|date" to the candidates returned for that query.
type MockSetlistProvider struct {
	Setlists map[string][]models.Setlist
	Err      error
	Calls    int
}

func (m *MockSetlistProvider) SearchSetlists(ctx context.Context, artist, date string) ([]models.Setlist, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	setlists, ok := m.Setlists[artist+"|"+date]
	if !ok || len(setlists) == 0 {
		return nil, shared.ErrNoSetlistFound
	}
	return setlists, nil
}

func (m *MockSetlistProvider) Name() string { return "mock setlists" }

// MockCatalog is a test double for [services.Catalog].
// Tracks maps a search title to its candidates; Top maps an artist name to
// their top tracks; Playlists holds the user's existing playlists by name.
type MockCatalog struct {
	Tracks    map[string][]models.Track
	Top       map[string][]models.Track
	Playlists map[string]*models.Playlist

	AuthErr   error
	SearchErr error
	TopErr    error

	Created  []string            // names passed to CreatePlaylist
	Added    map[string][]string // playlist ID -> appended URIs
	Replaced map[string][]string // playlist ID -> replacement URIs

	SearchCalls int
	TopCalls    int
	nextID      int
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Tracks:    make(map[string][]models.Track),
		Top:       make(map[string][]models.Track),
		Playlists: make(map[string]*models.Playlist),
		Added:     make(map[string][]string),
		Replaced:  make(map[string][]string),
	}
}

func (m *MockCatalog) Authenticate(ctx context.Context) error { return m.AuthErr }

func (m *MockCatalog) SearchTracks(ctx context.Context, title, artist string, limit int) ([]models.Track, error) {
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Tracks[title], nil
}

func (m *MockCatalog) TopTracks(ctx context.Context, artist string, limit int) ([]models.Track, error) {
	m.TopCalls++
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	tracks := m.Top[artist]
	if limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (m *MockCatalog) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	if playlist, ok := m.Playlists[name]; ok {
		return playlist, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	m.nextID++
	playlist := &models.Playlist{
		ID:          fmt.Sprintf("playlist-%d", m.nextID),
		Name:        name,
		Description: description,
		Public:      public,
	}
	m.Playlists[name] = playlist
	m.Created = append(m.Created, name)
	return playlist, nil
}

func (m *MockCatalog) ReplaceTracks(ctx context.Context, playlistID string, uris []string) error {
	m.Replaced[playlistID] = append([]string{}, uris...)
	return nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return nil
}

func (m *MockCatalog) Name() string { return "mock catalog" }

// MockReader is a test double for [input.Reader].
type MockReader struct {
	Events   []models.Event
	Warnings []string
	Err      error
}

func (m *MockReader) Read(ctx context.Context) ([]models.Event, []string, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Events, m.Warnings, nil
}

func (m *MockReader) Source() string { return "mock input" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
