package tasks

import (
	"fmt"

	"github.com/hazelfield/encore/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadInput Phase = iota
	FetchSetlist
	MatchSongs
	BuildPlaylist
	Finalize
)

func (p Phase) String() string {
	switch p {
	case ReadInput:
		return "read_input"
	case FetchSetlist:
		return "fetch_setlist"
	case MatchSongs:
		return "match_songs"
	case BuildPlaylist:
		return "build_playlist"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

func readInputUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading events from %s...", source),
	}
}

func eventsLoadedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d events", count),
	}
}

func fetchSetlistUpdate(step, total int, event models.Event) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching setlist: %s (%s)", step, total, event.Artist, event.Date),
	}
}

func setlistFoundUpdate(step, total int, setlist *models.Setlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found setlist at %s, %s (%d songs)", setlist.Venue, setlist.City, len(setlist.Songs())),
		Data:    setlist,
	}
}

func matchSongUpdate(step, total int, song models.SetlistSong) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.Performer, song.Title),
	}
}

func buildPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Building playlist: %s", name),
	}
}

func playlistDoneUpdate(playlist *models.Playlist, created bool) ProgressUpdate {
	verb := "Updated"
	if created {
		verb = "Created"
	}
	return ProgressUpdate{
		Phase:   BuildPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s playlist: %s (ID: %s)", verb, playlist.Name, playlist.ID),
		Data:    playlist,
	}
}

func eventSkippedUpdate(step, total int, event models.Event, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Skipped %s (%s): %s", step, total, event.Artist, event.Date, reason),
	}
}

func finalizeUpdate(report *RunReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d playlists, %d songs matched, %d warnings", report.PlaylistsCreated+report.PlaylistsUpdated, report.SongsMatched, len(report.Warnings)),
		Data:    report,
	}
}
