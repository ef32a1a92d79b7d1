package main

import (
	"context"
	"time"

	"github.com/hazelfield/encore/internal/repositories"
	"github.com/urfave/cli/v3"
)

// runSummary is the serializable view of a persisted run.
type runSummary struct {
	ID               string     `json:"id"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Duration         string     `json:"duration"`
	EventsTotal      int        `json:"events_total"`
	EventsSkipped    int        `json:"events_skipped"`
	PlaylistsCreated int        `json:"playlists_created"`
	PlaylistsUpdated int        `json:"playlists_updated"`
	SongsMatched     int        `json:"songs_matched"`
	SongsFailed      int        `json:"songs_failed"`
	DryRun           bool       `json:"dry_run"`
}

// History lists past pipeline runs from the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"limit": cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	summaries := make([]runSummary, len(runs))
	for i, run := range runs {
		summaries[i] = runSummary{
			ID:               run.ID(),
			StartedAt:        run.StartedAt(),
			CompletedAt:      run.CompletedAt(),
			Duration:         run.Duration().Round(time.Second).String(),
			EventsTotal:      run.EventsTotal(),
			EventsSkipped:    run.EventsSkipped(),
			PlaylistsCreated: run.PlaylistsCreated(),
			PlaylistsUpdated: run.PlaylistsUpdated(),
			SongsMatched:     run.SongsMatched(),
			SongsFailed:      run.SongsFailed(),
			DryRun:           run.DryRun(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	if len(summaries) == 0 {
		r.writePlain("No runs recorded yet. Try 'encore run' first.\n")
		return nil
	}

	r.writePlain("Last %d runs:\n\n", len(summaries))
	for i, s := range summaries {
		r.writePlain("%d. %s", i+1, s.StartedAt.Format("2006-01-02 15:04"))
		if s.DryRun {
			r.writePlain(" (dry run)")
		}
		r.writePlain("\n")
		r.writePlain("   Concerts: %d processed, %d skipped\n", s.EventsTotal, s.EventsSkipped)
		r.writePlain("   Playlists: %d created, %d updated\n", s.PlaylistsCreated, s.PlaylistsUpdated)
		r.writePlain("   Songs: %d matched, %d unmatched\n", s.SongsMatched, s.SongsFailed)
		if s.CompletedAt != nil {
			r.writePlain("   Duration: %s\n", s.Duration)
		}
		r.writePlain("\n")
	}

	return nil
}
