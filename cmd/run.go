package main

import (
	"context"
	"database/sql"

	"github.com/hazelfield/encore/internal/formatter"
	"github.com/hazelfield/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run executes the full setlist-to-playlist pipeline.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	opts := tasks.Options{
		Threshold:   config.Matcher.Threshold,
		SearchLimit: config.Matcher.SearchLimit,
		TopTracks:   config.Playlists.TopTracks,
		Public:      config.Playlists.Public,
		DryRun:      config.Playlists.DryRun,
	}
	if cmd.Bool("dry-run") {
		opts.DryRun = true
	}
	if cmd.Bool("public") {
		opts.Public = true
	}
	if threshold := cmd.Float("threshold"); threshold > 0 {
		opts.Threshold = threshold
	}
	if cmd.IsSet("top-tracks") {
		opts.TopTracks = cmd.Int("top-tracks")
	}

	reader, err := r.buildReader(cmd, config)
	if err != nil {
		return err
	}

	var db *sql.DB
	if !cmd.Bool("no-cache") {
		if db, err = r.openDatabase(config); err != nil {
			r.logger.Warn("match cache unavailable", "error", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	engine, err := r.buildEngine(reader, db, opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		r.writePlain("Dry run: playlists will not be created or modified\n\n")
	}
	r.writePlain("Building playlists from %s...\n\n", reader.Source())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ReadInput:
				r.writePlain("📋 %s\n", update.Message)
			case tasks.FetchSetlist:
				r.writePlain("\n🎤 %s\n", update.Message)
			case tasks.MatchSongs:
				r.writePlain("   %s\n", update.Message)
			case tasks.BuildPlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.Finalize:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	report, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Run Complete!")
	r.writePlain("Concerts: %d processed, %d skipped\n", report.EventsTotal, report.EventsSkipped)
	r.writePlain("Playlists: %d created, %d updated\n", report.PlaylistsCreated, report.PlaylistsUpdated)
	r.writePlain("Songs: %d matched, %d unmatched\n", report.SongsMatched, report.SongsFailed)
	if report.CacheHits > 0 {
		r.writePlain("Cache hits: %d\n", report.CacheHits)
	}

	if len(report.Warnings) > 0 {
		r.writePlain("\nWarnings:\n")
		for _, warning := range report.Warnings {
			r.writePlain("  ⚠ %s\n", warning)
		}
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		written, err := formatter.WriteReport(report, reportPath, cmd.String("format"))
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report written to %s\n", written)
	}

	return nil
}
