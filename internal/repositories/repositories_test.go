package repositories

import (
	"errors"
	"testing"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

func setupTestDB(t *testing.T) *MatchRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewMatchRepository(db)
}

func setupRunRepo(t *testing.T) *RunRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewRunRepository(db)
}

func newTestMatch(title, artist string) *models.CachedMatch {
	key := shared.NormalizeSongKey(title, artist)
	return models.NewCachedMatch(0, key, title, artist, "t1", "spotify:track:t1", 0.92)
}

func TestMatchRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := setupTestDB(t)

		match := newTestMatch("Song One", "Bandname")
		if err := repo.Create(match); err != nil {
			t.Fatalf("failed to create match: %v", err)
		}

		if match.ID() == "" {
			t.Error("expected generated ID")
		}

		t.Run("Rejects Invalid Match", func(t *testing.T) {
			invalid := models.NewCachedMatch(0, "", "", "", "", "", 0)
			if err := repo.Create(invalid); err == nil {
				t.Error("expected validation error")
			}
		})

		t.Run("Rejects Duplicate Song Key", func(t *testing.T) {
			if err := repo.Create(newTestMatch("Song One", "Bandname")); err == nil {
				t.Error("expected unique constraint violation")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		repo := setupTestDB(t)

		match := newTestMatch("Song One", "Bandname")
		if err := repo.Create(match); err != nil {
			t.Fatalf("failed to create match: %v", err)
		}

		got, err := repo.Get(match.ID())
		if err != nil {
			t.Fatalf("failed to get match: %v", err)
		}
		if got.Title() != "Song One" || got.TrackURI() != "spotify:track:t1" {
			t.Errorf("unexpected match: title=%q uri=%q", got.Title(), got.TrackURI())
		}

		if _, err := repo.Get("missing-id"); err == nil {
			t.Error("expected error for missing match")
		}
	})

	t.Run("GetBySongKey", func(t *testing.T) {
		repo := setupTestDB(t)

		match := newTestMatch("Song One", "Bandname")
		if err := repo.Create(match); err != nil {
			t.Fatalf("failed to create match: %v", err)
		}

		got, err := repo.GetBySongKey(shared.NormalizeSongKey("Song One", "Bandname"))
		if err != nil {
			t.Fatalf("failed to get match by key: %v", err)
		}
		if got.ID() != match.ID() {
			t.Errorf("got match %s, want %s", got.ID(), match.ID())
		}

		if _, err := repo.GetBySongKey("missing|key"); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := setupTestDB(t)

		first := newTestMatch("Song One", "Bandname")
		if err := repo.Upsert(first); err != nil {
			t.Fatalf("failed to upsert new match: %v", err)
		}

		refreshed := newTestMatch("Song One", "Bandname")
		refreshed.SetTrack("t2", "spotify:track:t2")
		refreshed.SetScore(0.99)
		if err := repo.Upsert(refreshed); err != nil {
			t.Fatalf("failed to upsert existing match: %v", err)
		}

		got, err := repo.GetBySongKey(first.SongKey())
		if err != nil {
			t.Fatalf("failed to get match: %v", err)
		}
		if got.TrackID() != "t2" || got.Score() != 0.99 {
			t.Errorf("expected refreshed track, got id=%s score=%f", got.TrackID(), got.Score())
		}

		matches, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list matches: %v", err)
		}
		if len(matches) != 1 {
			t.Errorf("expected 1 match after upsert, got %d", len(matches))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := setupTestDB(t)

		match := newTestMatch("Song One", "Bandname")
		if err := repo.Create(match); err != nil {
			t.Fatalf("failed to create match: %v", err)
		}

		if err := repo.Delete(match.ID()); err != nil {
			t.Fatalf("failed to delete match: %v", err)
		}

		if _, err := repo.Get(match.ID()); err == nil {
			t.Error("expected soft-deleted match to be hidden")
		}

		if err := repo.Delete(match.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := setupTestDB(t)

		for _, song := range []struct{ title, artist string }{
			{"Song One", "Bandname"},
			{"Song Two", "Bandname"},
			{"Other Song", "Other Band"},
		} {
			if err := repo.Create(newTestMatch(song.title, song.artist)); err != nil {
				t.Fatalf("failed to create match: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list matches: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 matches, got %d", len(all))
		}

		filtered, err := repo.List(map[string]any{"artist": "Bandname"})
		if err != nil {
			t.Fatalf("failed to list matches: %v", err)
		}
		if len(filtered) != 2 {
			t.Errorf("expected 2 matches for Bandname, got %d", len(filtered))
		}

		// sequence order
		if filtered[0].Title() != "Song One" || filtered[1].Title() != "Song Two" {
			t.Errorf("unexpected order: %q, %q", filtered[0].Title(), filtered[1].Title())
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := setupRunRepo(t)

		run := models.NewRun(0, true)
		run.SetCounters(5, 1, 3, 1, 40, 2)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.EventsTotal() != 5 || got.SongsMatched() != 40 || !got.DryRun() {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.CompletedAt() != nil {
			t.Error("expected incomplete run")
		}
	})

	t.Run("Update Records Completion", func(t *testing.T) {
		repo := setupRunRepo(t)

		run := models.NewRun(0, false)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetCounters(2, 0, 2, 0, 20, 1)
		run.Complete()
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.CompletedAt() == nil {
			t.Error("expected completed run")
		}
		if got.PlaylistsCreated() != 2 {
			t.Errorf("expected 2 playlists created, got %d", got.PlaylistsCreated())
		}
	})

	t.Run("List Newest First With Limit", func(t *testing.T) {
		repo := setupRunRepo(t)

		for i := 0; i < 3; i++ {
			run := models.NewRun(0, false)
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := setupRunRepo(t)

		run := models.NewRun(0, false)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected soft-deleted run to be hidden")
		}
	})
}
