// package tasks implements the setlist-to-playlist pipeline.
//
// The core abstraction is Engine, which orchestrates reading events, fetching
// setlists, matching songs against the catalog, and building playlists.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hazelfield/encore/internal/input"
	"github.com/hazelfield/encore/internal/match"
	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/repositories"
	"github.com/hazelfield/encore/internal/services"
	"github.com/hazelfield/encore/internal/shared"
)

// SongOutcome represents the result of attempting to match a single setlist song.
type SongOutcome struct {
	Song  models.SetlistSong // Song as performed
	Match models.MatchResult // Match outcome; Track is nil when skipped
}

// EventOutcome contains all data from processing one event.
type EventOutcome struct {
	Event      models.Event     // Input row
	Setlist    *models.Setlist  // Accepted setlist (nil when skipped)
	Playlist   *models.Playlist // Built playlist (nil when skipped or dry run)
	Songs      []SongOutcome    // Per-song match results in performance order
	Warnings   []string         // Non-fatal problems hit while processing the event
	Created    bool             // Playlist was newly created
	Updated    bool             // Existing playlist was replaced
	Skipped    bool             // Event produced no playlist
	SkipReason string           // Why the event was skipped
}

// warn records a warning on the outcome.
func (o *EventOutcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// RunReport contains all data from a full pipeline run.
type RunReport struct {
	Events           []EventOutcome // Per-event outcomes in input order
	Warnings         []string       // Accumulated warnings for skipped rows, events, and songs
	EventsTotal      int
	EventsSkipped    int
	PlaylistsCreated int
	PlaylistsUpdated int
	SongsMatched     int
	SongsFailed      int
	CacheHits        int
	DryRun           bool
}

// warn records a warning on the report.
func (r *RunReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Engine defines the pipeline operations.
type Engine interface {
	// Run processes every input event sequentially and reports the outcome.
	// Individual event and song failures are recovered and recorded as
	// warnings; only systemic failures (auth, unreadable input) abort.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunReport, error)

	// ProcessEvent runs the pipeline for a single event.
	ProcessEvent(ctx context.Context, event models.Event) (*EventOutcome, error)
}

// Options tunes pipeline behavior.
type Options struct {
	Threshold   float64 // Minimum title similarity for a catalog match
	SearchLimit int     // Candidates requested per catalog search
	TopTracks   int     // Top tracks substituted for an opener with no recorded songs; 0 disables
	Public      bool    // Create public playlists
	DryRun      bool    // Resolve matches but skip playlist mutation
}

// PlaylistEngine implements Engine.
// Contains dependencies on the input reader, external services, and optional persistence.
type PlaylistEngine struct {
	reader   input.Reader
	setlists services.SetlistProvider
	catalog  services.Catalog
	cache    *repositories.MatchRepository // nil disables the match cache
	runs     *repositories.RunRepository   // nil disables run history
	opts     Options
	logger   *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
// cache and runs may be nil to disable persistence.
func NewPlaylistEngine(reader input.Reader, setlists services.SetlistProvider, catalog services.Catalog,
	cache *repositories.MatchRepository, runs *repositories.RunRepository, opts Options, logger *log.Logger) *PlaylistEngine {
	if opts.Threshold <= 0 {
		opts.Threshold = 0.8
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PlaylistEngine{
		reader:   reader,
		setlists: setlists,
		catalog:  catalog,
		cache:    cache,
		runs:     runs,
		opts:     opts,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run processes every input event sequentially.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunReport, error) {
	if e.reader == nil {
		return nil, fmt.Errorf("%w: input reader not initialized", shared.ErrServiceUnavailable)
	}
	if e.setlists == nil || e.catalog == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if err := e.catalog.Authenticate(ctx); err != nil {
		return nil, err
	}

	report := &RunReport{DryRun: e.opts.DryRun}

	e.sendProgress(progress, readInputUpdate(e.reader.Source()))
	events, warnings, err := e.reader.Read(ctx)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)
	report.EventsTotal = len(events)
	e.sendProgress(progress, eventsLoadedUpdate(len(events)))

	var run *models.Run
	if e.runs != nil {
		run = models.NewRun(0, e.opts.DryRun)
		if err := e.runs.Create(run); err != nil {
			e.logger.Warn("failed to record run start", "error", err)
			run = nil
		}
	}

	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.sendProgress(progress, fetchSetlistUpdate(i+1, len(events), event))

		outcome, err := e.processEvent(ctx, event, progress)
		if err != nil {
			// Systemic failure; everything processed so far is lost context
			// for the caller, so the partial report goes with the error.
			return report, err
		}

		report.Events = append(report.Events, *outcome)
		e.tally(report, outcome)

		if outcome.Skipped {
			report.warn("skipped %s (%s): %s", event.Artist, event.Date, outcome.SkipReason)
			e.sendProgress(progress, eventSkippedUpdate(i+1, len(events), event, outcome.SkipReason))
		}
	}

	if run != nil {
		run.SetCounters(report.EventsTotal, report.EventsSkipped, report.PlaylistsCreated,
			report.PlaylistsUpdated, report.SongsMatched, report.SongsFailed)
		run.Complete()
		if err := e.runs.Update(run); err != nil {
			e.logger.Warn("failed to record run completion", "error", err)
		}
	}

	e.sendProgress(progress, finalizeUpdate(report))
	return report, nil
}

// tally folds one event outcome into the report counters and per-song warnings.
func (e *PlaylistEngine) tally(report *RunReport, outcome *EventOutcome) {
	if outcome.Skipped {
		report.EventsSkipped++
	}
	if outcome.Created {
		report.PlaylistsCreated++
	}
	if outcome.Updated {
		report.PlaylistsUpdated++
	}

	report.Warnings = append(report.Warnings, outcome.Warnings...)

	for _, song := range outcome.Songs {
		if song.Match.Matched() {
			report.SongsMatched++
			if song.Match.Cached {
				report.CacheHits++
			}
			continue
		}
		report.SongsFailed++
		report.warn("no catalog match for %q by %s (%s, %s)",
			song.Song.Title, song.Song.Performer, outcome.Event.Artist, outcome.Event.Date)
	}
}

// ProcessEvent runs the pipeline for a single event.
func (e *PlaylistEngine) ProcessEvent(ctx context.Context, event models.Event) (*EventOutcome, error) {
	return e.processEvent(ctx, event, nil)
}

func (e *PlaylistEngine) processEvent(ctx context.Context, event models.Event, progress chan<- ProgressUpdate) (*EventOutcome, error) {
	outcome := &EventOutcome{Event: event}

	if err := event.Validate(); err != nil {
		outcome.Skipped = true
		outcome.SkipReason = err.Error()
		return outcome, nil
	}

	candidates, err := e.setlists.SearchSetlists(ctx, event.Artist, event.Date)
	if errors.Is(err, shared.ErrNoSetlistFound) {
		outcome.Skipped = true
		outcome.SkipReason = "no setlist found"
		return outcome, nil
	}
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		outcome.Skipped = true
		outcome.SkipReason = fmt.Sprintf("setlist lookup failed: %v", err)
		return outcome, nil
	}

	setlist, score, ok := match.BestSetlist(event, candidates)
	if !ok {
		outcome.Skipped = true
		outcome.SkipReason = fmt.Sprintf("no setlist candidate close enough (best score %.2f)", score)
		return outcome, nil
	}
	outcome.Setlist = &setlist
	e.sendProgress(progress, setlistFoundUpdate(1, 1, &setlist))

	songs := setlist.Songs()

	var uris []string
	index := 0
	for _, act := range setlist.OrderedActs() {
		if len(act.Songs) == 0 {
			if act.Opener && e.opts.TopTracks > 0 {
				fallback, err := e.openerTopTracks(ctx, act.Performer, outcome)
				if err != nil {
					return nil, err
				}
				uris = append(uris, fallback...)
			}
			continue
		}

		for _, title := range act.Songs {
			index++
			song := models.SetlistSong{Performer: act.Performer, Title: title}
			e.sendProgress(progress, matchSongUpdate(index, len(songs), song))

			result, err := e.matchSong(ctx, song)
			if err != nil {
				return nil, err
			}

			outcome.Songs = append(outcome.Songs, SongOutcome{Song: song, Match: result})
			if result.Matched() {
				uris = append(uris, result.Track.URI)
			}
		}
	}

	if len(outcome.Songs) == 0 {
		outcome.Skipped = true
		outcome.SkipReason = "setlist has no songs"
		return outcome, nil
	}

	uris = dedupeURIs(uris)
	if len(uris) == 0 {
		outcome.Skipped = true
		outcome.SkipReason = "no songs matched the catalog"
		return outcome, nil
	}

	name := event.PlaylistName()
	e.sendProgress(progress, buildPlaylistUpdate(name))

	if e.opts.DryRun {
		e.logger.Info("dry run, skipping playlist mutation", "playlist", name, "tracks", len(uris))
		return outcome, nil
	}

	playlist, created, err := e.buildPlaylist(ctx, event, uris)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		outcome.Skipped = true
		outcome.SkipReason = fmt.Sprintf("playlist build failed: %v", err)
		return outcome, nil
	}

	outcome.Playlist = playlist
	outcome.Created = created
	outcome.Updated = !created
	e.sendProgress(progress, playlistDoneUpdate(playlist, created))

	return outcome, nil
}

// openerTopTracks substitutes an opener's most popular catalog tracks when
// the setlist bills the act without recording any songs. Lookup failures
// degrade to a warning so the rest of the lineup still builds; only auth
// failures propagate.
func (e *PlaylistEngine) openerTopTracks(ctx context.Context, performer string, outcome *EventOutcome) ([]string, error) {
	e.logger.Info("no songs recorded for opener, using top tracks", "performer", performer, "count", e.opts.TopTracks)

	tracks, err := e.catalog.TopTracks(ctx, performer, e.opts.TopTracks)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		outcome.warn("could not fetch top tracks for opener %s: %v", performer, err)
		return nil, nil
	}
	if len(tracks) == 0 {
		outcome.warn("no catalog artist close enough to opener %s for top tracks", performer)
		return nil, nil
	}

	uris := make([]string, 0, len(tracks))
	for i := range tracks {
		track := tracks[i]
		outcome.Songs = append(outcome.Songs, SongOutcome{
			Song: models.SetlistSong{Performer: performer, Title: track.Title},
			Match: models.MatchResult{
				Title:     track.Title,
				Performer: performer,
				Track:     &track,
				Fallback:  true,
			},
		})
		uris = append(uris, track.URI)
	}

	return uris, nil
}

// dedupeURIs drops repeat track URIs case-insensitively, keeping the first
// occurrence so playlist order follows the first performance of a song.
func dedupeURIs(uris []string) []string {
	seen := make(map[string]bool, len(uris))
	out := uris[:0]
	for _, uri := range uris {
		key := strings.ToLower(uri)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, uri)
	}
	return out
}

// matchSong resolves one setlist song to a catalog track, consulting the
// cache first and falling through a sequence of search queries.
func (e *PlaylistEngine) matchSong(ctx context.Context, song models.SetlistSong) (models.MatchResult, error) {
	if e.cache != nil {
		key := shared.NormalizeSongKey(song.Title, song.Performer)
		if cached, err := e.cache.GetBySongKey(key); err == nil {
			return models.MatchResult{
				Title:     song.Title,
				Performer: song.Performer,
				Track:     cached.AsTrack(),
				Score:     cached.Score(),
				Cached:    true,
			}, nil
		}
	}

	result, err := e.searchAndScore(ctx, song)
	if err != nil {
		return models.MatchResult{}, err
	}

	// Misses are cached too, with an empty track reference, so repeat runs
	// skip searching for songs the catalog does not have.
	if e.cache != nil {
		key := shared.NormalizeSongKey(song.Title, song.Performer)
		var trackID, trackURI string
		if result.Matched() {
			trackID, trackURI = result.Track.ID, result.Track.URI
		}
		entry := models.NewCachedMatch(0, key, song.Title, song.Performer,
			trackID, trackURI, result.Score)
		if err := e.cache.Upsert(entry); err != nil {
			e.logger.Warn("failed to cache match", "song", song.Title, "error", err)
		}
	}

	return result, nil
}

// searchAndScore runs the query fallback sequence: raw title with artist,
// cleaned title with artist, raw title alone, cleaned title alone. The first
// query producing a candidate above threshold wins.
func (e *PlaylistEngine) searchAndScore(ctx context.Context, song models.SetlistSong) (models.MatchResult, error) {
	cleaned := match.CleanTitle(song.Title)

	queries := []struct{ title, artist string }{
		{song.Title, song.Performer},
		{cleaned, song.Performer},
		{song.Title, ""},
		{cleaned, ""},
	}

	seen := make(map[string]bool)
	for _, q := range queries {
		if q.title == "" {
			continue
		}
		key := q.title + "|" + q.artist
		if seen[key] {
			continue
		}
		seen[key] = true

		candidates, err := e.catalog.SearchTracks(ctx, q.title, q.artist, e.opts.SearchLimit)
		if err != nil {
			if errors.Is(err, shared.ErrAuthFailed) {
				return models.MatchResult{}, err
			}
			e.logger.Warn("catalog search failed", "song", song.Title, "error", err)
			continue
		}

		result := match.BestCandidate(song.Title, song.Performer, candidates, e.opts.Threshold)
		if result.Matched() {
			return result, nil
		}
	}

	return models.MatchResult{Title: song.Title, Performer: song.Performer}, nil
}

// buildPlaylist reuses an existing playlist with the event's name, replacing
// its contents, or creates a fresh one. Returns whether a playlist was created.
func (e *PlaylistEngine) buildPlaylist(ctx context.Context, event models.Event, uris []string) (*models.Playlist, bool, error) {
	name := event.PlaylistName()

	existing, err := e.catalog.FindPlaylistByName(ctx, name)
	if err == nil {
		if err := e.catalog.ReplaceTracks(ctx, existing.ID, uris); err != nil {
			return nil, false, err
		}
		existing.TrackCount = len(uris)
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil, false, err
	}

	created, err := e.catalog.CreatePlaylist(ctx, name, event.Description(), e.opts.Public)
	if err != nil {
		return nil, false, err
	}

	if err := e.catalog.AddTracks(ctx, created.ID, uris); err != nil {
		return nil, false, err
	}

	created.TrackCount = len(uris)
	return created, true, nil
}
