package match

import (
	"testing"

	"github.com/hazelfield/encore/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Song Title", "song title"},
		{"strips punctuation", "Don't Stop Me Now!", "dont stop me now"},
		{"collapses whitespace", "  two   words  ", "two words"},
		{"hyphen becomes space", "check-one-two", "check one two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips parens", "Song (Live)", "Song"},
		{"strips brackets", "Song [Remastered 2011]", "Song"},
		{"strips both", "Song (Live) [Remix]", "Song"},
		{"nested", "Song (Live (Acoustic))", "Song"},
		{"plain title untouched", "Plain Song", "Plain Song"},
		{"unbalanced close ignored", "Song) Title", "Song) Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		if got := Similarity("Song One", "Song One"); got != 1 {
			t.Errorf("Similarity() = %f, want 1", got)
		}
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		if got := Similarity("don't stop", "DONT STOP"); got != 1 {
			t.Errorf("Similarity() = %f, want 1", got)
		}
	})

	t.Run("disjoint strings score low", func(t *testing.T) {
		if got := Similarity("aaaa", "zzzz"); got > 0.1 {
			t.Errorf("Similarity() = %f, want near 0", got)
		}
	})

	t.Run("empty against non-empty scores 0", func(t *testing.T) {
		if got := Similarity("", "something"); got != 0 {
			t.Errorf("Similarity() = %f, want 0", got)
		}
	})

	t.Run("close strings score high", func(t *testing.T) {
		if got := Similarity("Song Onee", "Song One"); got < 0.85 {
			t.Errorf("Similarity() = %f, want >= 0.85", got)
		}
	})
}

func TestBestCandidate(t *testing.T) {
	t.Run("exact title wins", func(t *testing.T) {
		candidates := []models.Track{
			{ID: "t1", Title: "Different Song", Artist: "Bandname"},
			{ID: "t2", Title: "Song One", Artist: "Bandname"},
		}

		result := BestCandidate("Song One", "Bandname", candidates, 0.8)
		if !result.Matched() {
			t.Fatal("expected a match")
		}
		if result.Track.ID != "t2" {
			t.Errorf("matched track %s, want t2", result.Track.ID)
		}
		if result.Score != 1 {
			t.Errorf("score = %f, want 1", result.Score)
		}
	})

	t.Run("below threshold returns no track", func(t *testing.T) {
		candidates := []models.Track{
			{ID: "t1", Title: "Completely Unrelated", Artist: "Bandname"},
		}

		result := BestCandidate("Song One", "Bandname", candidates, 0.8)
		if result.Matched() {
			t.Errorf("expected no match, got track %s", result.Track.ID)
		}
	})

	t.Run("artist similarity breaks ranking", func(t *testing.T) {
		candidates := []models.Track{
			{ID: "t1", Title: "Song One", Artist: "Tribute Band"},
			{ID: "t2", Title: "Song One", Artist: "Bandname"},
		}

		result := BestCandidate("Song One", "Bandname", candidates, 0.8)
		if !result.Matched() || result.Track.ID != "t2" {
			t.Errorf("expected t2 to win on artist similarity, got %+v", result.Track)
		}
	})

	t.Run("first listed wins ties", func(t *testing.T) {
		candidates := []models.Track{
			{ID: "t1", Title: "Song One", Artist: "Bandname"},
			{ID: "t2", Title: "Song One", Artist: "Bandname"},
		}

		result := BestCandidate("Song One", "Bandname", candidates, 0.8)
		if !result.Matched() || result.Track.ID != "t1" {
			t.Errorf("expected first candidate to win tie, got %+v", result.Track)
		}
	})

	t.Run("cleaned title comparison matches live versions", func(t *testing.T) {
		candidates := []models.Track{
			{ID: "t1", Title: "Song One (Live at Hall A)", Artist: "Bandname"},
		}

		result := BestCandidate("Song One", "Bandname", candidates, 0.8)
		if !result.Matched() || result.Track.ID != "t1" {
			t.Errorf("expected cleaned comparison to match, got %+v", result.Track)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		result := BestCandidate("Song One", "Bandname", nil, 0.8)
		if result.Matched() {
			t.Error("expected no match with no candidates")
		}
	})
}

func TestBestSetlist(t *testing.T) {
	event := models.Event{Artist: "Bandname", Venue: "Hall A", City: "City", Date: "2023-05-01"}

	t.Run("picks the matching venue and date", func(t *testing.T) {
		candidates := []models.Setlist{
			{ID: "s1", Artist: "Bandname", Venue: "Other Place", City: "Elsewhere", EventDate: "2023-04-28"},
			{ID: "s2", Artist: "Bandname", Venue: "Hall A", City: "City", EventDate: "2023-05-01"},
		}

		best, score, ok := BestSetlist(event, candidates)
		if !ok {
			t.Fatal("expected a setlist to be accepted")
		}
		if best.ID != "s2" {
			t.Errorf("picked setlist %s, want s2", best.ID)
		}
		if score < 4 {
			t.Errorf("score = %f, want >= 4 for exact match with date bonus", score)
		}
	})

	t.Run("rejects when nothing reaches the floor", func(t *testing.T) {
		candidates := []models.Setlist{
			{ID: "s1", Artist: "Unrelated Act", Venue: "Nowhere", City: "Elsewhere", EventDate: "2020-01-01"},
		}

		if _, _, ok := BestSetlist(event, candidates); ok {
			t.Error("expected no setlist to be accepted")
		}
	})

	t.Run("rejects with no candidates", func(t *testing.T) {
		if _, _, ok := BestSetlist(event, nil); ok {
			t.Error("expected no setlist with empty candidates")
		}
	})
}
