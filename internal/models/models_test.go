package models

import (
	"errors"
	"testing"

	"github.com/hazelfield/encore/internal/shared"
)

func TestEvent(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name    string
			event   Event
			wantErr bool
		}{
			{"valid event", Event{Artist: "Bandname", Venue: "Hall A", City: "City", Date: "2023-05-01"}, false},
			{"missing artist", Event{Venue: "Hall A", City: "City", Date: "2023-05-01"}, true},
			{"missing date", Event{Artist: "Bandname", Venue: "Hall A", City: "City"}, true},
			{"invalid date format", Event{Artist: "Bandname", Date: "05/01/2023"}, true},
			{"whitespace artist", Event{Artist: "   ", Date: "2023-05-01"}, true},
			{"missing venue is fine", Event{Artist: "Bandname", Date: "2023-05-01"}, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.event.Validate()
				if tt.wantErr && err == nil {
					t.Error("expected validation error, got nil")
				}
				if !tt.wantErr && err != nil {
					t.Errorf("unexpected validation error: %v", err)
				}
				if tt.wantErr && err != nil && !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}
	})

	t.Run("PlaylistName", func(t *testing.T) {
		event := Event{Artist: "Bandname", Venue: "Hall A", City: "City", Date: "2023-05-01"}
		want := "Bandname — Hall A, City (2023-05-01)"
		if got := event.PlaylistName(); got != want {
			t.Errorf("PlaylistName() = %q, want %q", got, want)
		}
	})

	t.Run("Description includes event name when present", func(t *testing.T) {
		event := Event{Artist: "Bandname", Name: "Summer Fest", Venue: "Hall A", City: "City", Date: "2023-05-01"}
		want := "Setlist from Summer Fest, Bandname at Hall A, City on 2023-05-01."
		if got := event.Description(); got != want {
			t.Errorf("Description() = %q, want %q", got, want)
		}
	})
}

func TestSetlist(t *testing.T) {
	t.Run("Songs puts openers before the headliner", func(t *testing.T) {
		setlist := Setlist{
			Artist: "Headliner",
			Acts: []SetAct{
				{Performer: "Headliner", Songs: []string{"Hit One", "Hit Two"}},
				{Performer: "Opening Act", Songs: []string{"Warm Up"}, Opener: true},
			},
		}

		songs := setlist.Songs()
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}

		want := []SetlistSong{
			{Performer: "Opening Act", Title: "Warm Up"},
			{Performer: "Headliner", Title: "Hit One"},
			{Performer: "Headliner", Title: "Hit Two"},
		}
		for i, song := range songs {
			if song != want[i] {
				t.Errorf("songs[%d] = %+v, want %+v", i, song, want[i])
			}
		}
	})

	t.Run("Songs preserves order within an act", func(t *testing.T) {
		setlist := Setlist{
			Acts: []SetAct{
				{Performer: "Band", Songs: []string{"First", "Second", "Third"}},
			},
		}

		songs := setlist.Songs()
		for i, title := range []string{"First", "Second", "Third"} {
			if songs[i].Title != title {
				t.Errorf("songs[%d].Title = %q, want %q", i, songs[i].Title, title)
			}
		}
	})

	t.Run("Songs of empty setlist is empty", func(t *testing.T) {
		if songs := (Setlist{}).Songs(); len(songs) != 0 {
			t.Errorf("expected no songs, got %d", len(songs))
		}
	})
}

func TestMatchResult(t *testing.T) {
	t.Run("Matched", func(t *testing.T) {
		matched := MatchResult{Title: "Song", Track: &Track{ID: "t1"}, Score: 0.95}
		if !matched.Matched() {
			t.Error("expected match with track to report Matched")
		}

		skipped := MatchResult{Title: "Song", Score: 0.4}
		if skipped.Matched() {
			t.Error("expected match without track to report not Matched")
		}
	})
}

func TestCachedMatch(t *testing.T) {
	t.Run("NewCachedMatch sets timestamps", func(t *testing.T) {
		match := NewCachedMatch(1, "song one|bandname", "Song One", "Bandname", "t1", "spotify:track:t1", 0.92)
		if match.CreatedAt().IsZero() || match.UpdatedAt().IsZero() {
			t.Error("expected timestamps to be set")
		}
		if match.SongKey() != "song one|bandname" {
			t.Errorf("SongKey() = %q", match.SongKey())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		valid := NewCachedMatch(1, "song|band", "Song", "Band", "t1", "spotify:track:t1", 0.9)
		if err := valid.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		noKey := NewCachedMatch(1, "", "Song", "Band", "t1", "spotify:track:t1", 0.9)
		if err := noKey.Validate(); err == nil {
			t.Error("expected error for missing song key")
		}

		miss := NewCachedMatch(1, "song|band", "Song", "Band", "", "", 0)
		if err := miss.Validate(); err != nil {
			t.Errorf("expected a trackless miss entry to be valid, got %v", err)
		}

		halfTrack := NewCachedMatch(1, "song|band", "Song", "Band", "t1", "", 0.9)
		if err := halfTrack.Validate(); err == nil {
			t.Error("expected error for a track id without a uri")
		}

		badScore := NewCachedMatch(1, "song|band", "Song", "Band", "t1", "spotify:track:t1", 1.5)
		if err := badScore.Validate(); err == nil {
			t.Error("expected error for out of range score")
		}
	})

	t.Run("AsTrack", func(t *testing.T) {
		match := NewCachedMatch(1, "song|band", "Song", "Band", "t1", "spotify:track:t1", 0.9)
		track := match.AsTrack()
		if track.ID != "t1" || track.URI != "spotify:track:t1" || track.Title != "Song" {
			t.Errorf("unexpected track: %+v", track)
		}

		miss := NewCachedMatch(1, "song|band", "Song", "Band", "", "", 0)
		if miss.Matched() {
			t.Error("expected a trackless entry to report unmatched")
		}
		if miss.AsTrack() != nil {
			t.Error("expected nil track for a cached miss")
		}
	})

	t.Run("SetSong updates the key", func(t *testing.T) {
		match := NewCachedMatch(1, "old|key", "Old", "Key", "t1", "spotify:track:t1", 0.9)
		match.SetSong("New Song", "New Band")
		if match.SongKey() != "new song|new band" {
			t.Errorf("SongKey() = %q, want %q", match.SongKey(), "new song|new band")
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("Complete records duration", func(t *testing.T) {
		run := NewRun(1, false)
		if run.CompletedAt() != nil {
			t.Error("expected new run to be incomplete")
		}
		if run.Duration() != 0 {
			t.Error("expected zero duration for incomplete run")
		}

		run.Complete()
		if run.CompletedAt() == nil {
			t.Error("expected completed run to have completion time")
		}
		if run.Duration() < 0 {
			t.Error("expected non-negative duration")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		run := NewRun(1, true)
		run.SetCounters(5, 1, 4, 0, 40, 3)
		if err := run.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		run.SetCounters(5, 6, 0, 0, 0, 0)
		if err := run.Validate(); err == nil {
			t.Error("expected error when skipped exceeds total")
		}

		run.SetCounters(-1, 0, 0, 0, 0, 0)
		if err := run.Validate(); err == nil {
			t.Error("expected error for negative counter")
		}
	})
}
