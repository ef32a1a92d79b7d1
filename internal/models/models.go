// package models defines the data model for the encore playlist generator
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/hazelfield/encore/internal/shared"
)

// Model defines the base interface for all persistent models in the playlist generator.
// Implementations include CachedMatch and Run.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Event identifies one concert attended, sourced from an input row.
// Events are immutable once read.
type Event struct {
	Artist   string `json:"artist"`
	Name     string `json:"event_name"`
	Venue    string `json:"venue"`
	City     string `json:"city"`
	Date     string `json:"date"` // YYYY-MM-DD
	Festival bool   `json:"is_festival,omitempty"`
}

// Validate checks that the event carries the fields required to look up a setlist.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Artist) == "" {
		return fmt.Errorf("%w: event is missing artist", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(e.Date) == "" {
		return fmt.Errorf("%w: event for %q is missing date", shared.ErrInvalidInput, e.Artist)
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return fmt.Errorf("%w: event for %q has invalid date %q (want YYYY-MM-DD)", shared.ErrInvalidInput, e.Artist, e.Date)
	}
	return nil
}

// PlaylistName derives the deterministic playlist name for this event.
func (e Event) PlaylistName() string {
	return fmt.Sprintf("%s — %s, %s (%s)", e.Artist, e.Venue, e.City, e.Date)
}

// Description derives the playlist description for this event.
func (e Event) Description() string {
	parts := []string{"Setlist from"}
	if e.Name != "" {
		parts = append(parts, e.Name+",")
	}
	parts = append(parts, fmt.Sprintf("%s at %s, %s on %s.", e.Artist, e.Venue, e.City, e.Date))
	if e.Festival {
		parts = append(parts, "Festival lineup in running order.")
	}
	return strings.Join(parts, " ")
}

// SetAct is an ordered run of songs by a single performer within a setlist.
// Named acts (tour openers, guest sets) precede the headliner in performance order.
type SetAct struct {
	Performer string   `json:"performer"`
	Songs     []string `json:"songs"`
	Opener    bool     `json:"opener"`
}

// Setlist holds the parsed setlist for one concert.
type Setlist struct {
	ID        string   `json:"id"`
	Artist    string   `json:"artist"`
	Venue     string   `json:"venue"`
	City      string   `json:"city"`
	EventDate string   `json:"event_date"` // YYYY-MM-DD
	URL       string   `json:"url"`
	Acts      []SetAct `json:"acts"`
}

// OrderedActs returns the acts in playlist order: openers first, then the
// headliner's sets.
func (s Setlist) OrderedActs() []SetAct {
	acts := make([]SetAct, 0, len(s.Acts))
	for _, act := range s.Acts {
		if act.Opener {
			acts = append(acts, act)
		}
	}
	for _, act := range s.Acts {
		if !act.Opener {
			acts = append(acts, act)
		}
	}
	return acts
}

// Songs flattens all acts into (performer, title) order: openers first, then the headliner.
func (s Setlist) Songs() []SetlistSong {
	var songs []SetlistSong
	for _, act := range s.OrderedActs() {
		for _, title := range act.Songs {
			songs = append(songs, SetlistSong{Performer: act.Performer, Title: title})
		}
	}
	return songs
}

// SetlistSong is one performed song attributed to its performer.
type SetlistSong struct {
	Performer string `json:"performer"`
	Title     string `json:"title"`
}

// Track represents catalog track metadata from the streaming service.
type Track struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity,omitempty"`
}

// Playlist represents basic playlist metadata from the streaming service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
	TrackCount  int    `json:"track_count"`
	URL         string `json:"url,omitempty"`
}

// MatchResult is the outcome of matching one setlist song against the catalog.
// A nil Track signals "skip this song."
type MatchResult struct {
	Title     string  `json:"title"`
	Performer string  `json:"performer"`
	Track     *Track  `json:"track,omitempty"`
	Score     float64 `json:"score"`
	Cached    bool    `json:"cached,omitempty"`
	Fallback  bool    `json:"fallback,omitempty"` // Track came from the performer's top tracks, not the setlist
}

// Matched reports whether a catalog track was accepted for this song.
func (m MatchResult) Matched() bool {
	return m.Track != nil
}

// CachedMatch is a persisted song-to-track match, keyed by the normalized
// "title|artist" form so repeat runs skip catalog searches.
type CachedMatch struct {
	id        string
	sequence  int
	songKey   string
	title     string
	artist    string
	trackID   string
	trackURI  string
	score     float64
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedMatch creates a cached match for the given song and resolved track.
func NewCachedMatch(sequence int, songKey, title, artist, trackID, trackURI string, score float64) *CachedMatch {
	now := time.Now()
	return &CachedMatch{
		sequence:  sequence,
		songKey:   songKey,
		title:     title,
		artist:    artist,
		trackID:   trackID,
		trackURI:  trackURI,
		score:     score,
		createdAt: now,
		updatedAt: now,
	}
}

func (m *CachedMatch) ID() string            { return m.id }
func (m *CachedMatch) Sequence() int         { return m.sequence }
func (m *CachedMatch) SongKey() string       { return m.songKey }
func (m *CachedMatch) Title() string         { return m.title }
func (m *CachedMatch) Artist() string        { return m.artist }
func (m *CachedMatch) TrackID() string       { return m.trackID }
func (m *CachedMatch) TrackURI() string      { return m.trackURI }
func (m *CachedMatch) Score() float64        { return m.score }
func (m *CachedMatch) CreatedAt() time.Time  { return m.createdAt }
func (m *CachedMatch) UpdatedAt() time.Time  { return m.updatedAt }
func (m *CachedMatch) DeletedAt() *time.Time { return m.deletedAt }

func (m *CachedMatch) SetID(id string)             { m.id = id }
func (m *CachedMatch) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *CachedMatch) SetCreatedAt(t time.Time)    { m.createdAt = t }
func (m *CachedMatch) SetDeletedAt(t *time.Time)   { m.deletedAt = t }
func (m *CachedMatch) SetTrack(id, uri string)     { m.trackID, m.trackURI = id, uri }
func (m *CachedMatch) SetScore(score float64)      { m.score = score }
func (m *CachedMatch) SetSongKey(key string)       { m.songKey = key }
func (m *CachedMatch) SetSong(title, artist string) {
	m.title, m.artist = title, artist
	m.songKey = shared.NormalizeSongKey(title, artist)
}

// Validate checks that the cached match has a song key and a consistent
// track reference. An entry with no track at all records a failed lookup,
// so repeat runs skip searching for songs the catalog does not have.
func (m *CachedMatch) Validate() error {
	if m.songKey == "" {
		return fmt.Errorf("cached match requires a song key")
	}
	if (m.trackID == "") != (m.trackURI == "") {
		return fmt.Errorf("cached match for %q requires both a track id and uri", m.songKey)
	}
	if m.score < 0 || m.score > 1 {
		return fmt.Errorf("cached match score must be between 0 and 1, got %f", m.score)
	}
	return nil
}

// Matched reports whether the cached entry resolved to a track.
func (m *CachedMatch) Matched() bool {
	return m.trackID != ""
}

// Track converts the cached match back into a catalog track DTO.
// Returns nil for a cached miss.
func (m *CachedMatch) AsTrack() *Track {
	if !m.Matched() {
		return nil
	}
	return &Track{ID: m.trackID, URI: m.trackURI, Title: m.title, Artist: m.artist}
}

// Run records one pipeline execution with its counters and timing.
type Run struct {
	id               string
	sequence         int
	eventsTotal      int
	eventsSkipped    int
	playlistsCreated int
	playlistsUpdated int
	songsMatched     int
	songsFailed      int
	dryRun           bool
	startedAt        time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewRun creates a run record started now.
func NewRun(sequence int, dryRun bool) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		dryRun:    dryRun,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Sequence() int          { return r.sequence }
func (r *Run) EventsTotal() int       { return r.eventsTotal }
func (r *Run) EventsSkipped() int     { return r.eventsSkipped }
func (r *Run) PlaylistsCreated() int  { return r.playlistsCreated }
func (r *Run) PlaylistsUpdated() int  { return r.playlistsUpdated }
func (r *Run) SongsMatched() int      { return r.songsMatched }
func (r *Run) SongsFailed() int       { return r.songsFailed }
func (r *Run) DryRun() bool           { return r.dryRun }
func (r *Run) StartedAt() time.Time   { return r.startedAt }
func (r *Run) CompletedAt() *time.Time { return r.completedAt }
func (r *Run) CreatedAt() time.Time   { return r.createdAt }
func (r *Run) UpdatedAt() time.Time   { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time  { return r.deletedAt }

func (r *Run) SetID(id string)           { r.id = id }
func (r *Run) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Run) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Run) SetStartedAt(t time.Time)  { r.startedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetCounters records the outcome counters for a finished pipeline.
func (r *Run) SetCounters(eventsTotal, eventsSkipped, playlistsCreated, playlistsUpdated, songsMatched, songsFailed int) {
	r.eventsTotal = eventsTotal
	r.eventsSkipped = eventsSkipped
	r.playlistsCreated = playlistsCreated
	r.playlistsUpdated = playlistsUpdated
	r.songsMatched = songsMatched
	r.songsFailed = songsFailed
}

// Complete marks the run as finished now.
func (r *Run) Complete() {
	now := time.Now()
	r.completedAt = &now
	r.updatedAt = now
}

// SetCompletedAt sets the completion time, for rehydration from storage.
func (r *Run) SetCompletedAt(t *time.Time) {
	r.completedAt = t
}

// Duration returns the elapsed run time, or zero if the run never completed.
func (r *Run) Duration() time.Duration {
	if r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

// Validate checks that the run's counters are coherent.
func (r *Run) Validate() error {
	if r.eventsTotal < 0 || r.eventsSkipped < 0 || r.songsMatched < 0 || r.songsFailed < 0 {
		return fmt.Errorf("run counters must be non-negative")
	}
	if r.eventsSkipped > r.eventsTotal {
		return fmt.Errorf("run skipped %d events out of %d total", r.eventsSkipped, r.eventsTotal)
	}
	return nil
}
