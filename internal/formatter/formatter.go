// package formatter renders run reports and event listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/tasks"
)

// ReportToCSV converts a run report to CSV with one row per processed song.
//
// Columns: Artist, Date, Venue, Song, Performer, Matched, Track ID, Score
func ReportToCSV(report *tasks.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Artist", "Date", "Venue", "Song", "Performer", "Matched", "Track ID", "Score"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, event := range report.Events {
		for _, song := range event.Songs {
			trackID := ""
			if song.Match.Matched() {
				trackID = song.Match.Track.ID
			}
			record := []string{
				event.Event.Artist,
				event.Event.Date,
				event.Event.Venue,
				song.Song.Title,
				song.Song.Performer,
				strconv.FormatBool(song.Match.Matched()),
				trackID,
				fmt.Sprintf("%.2f", song.Match.Score),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a run report to Markdown with per-event sections.
func ReportToMarkdown(report *tasks.RunReport) ([]byte, error) {
	var buf bytes.Buffer

	title := "Playlist Run"
	if report.DryRun {
		title = "Playlist Run (dry run)"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	buf.WriteString(fmt.Sprintf("**Events**: %d (%d skipped)\n", report.EventsTotal, report.EventsSkipped))
	buf.WriteString(fmt.Sprintf("**Playlists**: %d created, %d updated\n", report.PlaylistsCreated, report.PlaylistsUpdated))
	buf.WriteString(fmt.Sprintf("**Songs**: %d matched, %d unmatched\n\n", report.SongsMatched, report.SongsFailed))

	for _, event := range report.Events {
		buf.WriteString(fmt.Sprintf("## %s\n\n", event.Event.PlaylistName()))

		if event.Skipped {
			buf.WriteString(fmt.Sprintf("Skipped: %s\n\n", event.SkipReason))
			continue
		}

		if event.Playlist != nil && event.Playlist.URL != "" {
			buf.WriteString(fmt.Sprintf("[Open playlist](%s)\n\n", event.Playlist.URL))
		}

		for i, song := range event.Songs {
			switch {
			case song.Match.Fallback:
				buf.WriteString(fmt.Sprintf("%d. %s - %s (top track)\n", i+1, song.Song.Performer, song.Song.Title))
			case song.Match.Matched():
				buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Song.Performer, song.Song.Title))
			default:
				buf.WriteString(fmt.Sprintf("%d. ~~%s - %s~~ (no match)\n", i+1, song.Song.Performer, song.Song.Title))
			}
		}
		buf.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		buf.WriteString("## Warnings\n\n")
		for _, warning := range report.Warnings {
			buf.WriteString(fmt.Sprintf("- %s\n", warning))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText converts a run report to a plain text summary.
func ReportToText(report *tasks.RunReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Events: %d (%d skipped)\n", report.EventsTotal, report.EventsSkipped))
	buf.WriteString(fmt.Sprintf("Playlists: %d created, %d updated\n", report.PlaylistsCreated, report.PlaylistsUpdated))
	buf.WriteString(fmt.Sprintf("Songs: %d matched, %d unmatched\n", report.SongsMatched, report.SongsFailed))
	if report.CacheHits > 0 {
		buf.WriteString(fmt.Sprintf("Cache hits: %d\n", report.CacheHits))
	}

	for _, event := range report.Events {
		buf.WriteString("\n")
		buf.WriteString(event.Event.PlaylistName() + "\n")
		if event.Skipped {
			buf.WriteString(fmt.Sprintf("  skipped: %s\n", event.SkipReason))
			continue
		}
		for i, song := range event.Songs {
			marker := " "
			if !song.Match.Matched() {
				marker = "x"
			}
			buf.WriteString(fmt.Sprintf("  %s %d. %s - %s\n", marker, i+1, song.Song.Performer, song.Song.Title))
		}
	}

	if len(report.Warnings) > 0 {
		buf.WriteString("\nWarnings:\n")
		for _, warning := range report.Warnings {
			buf.WriteString(fmt.Sprintf("  - %s\n", warning))
		}
	}

	return buf.Bytes(), nil
}

// EventsToText renders an event listing as aligned plain text rows.
func EventsToText(events []models.Event) []byte {
	var buf bytes.Buffer
	for i, event := range events {
		buf.WriteString(fmt.Sprintf("%3d. %s | %s | %s, %s\n", i+1, event.Date, event.Artist, event.Venue, event.City))
	}
	return buf.Bytes()
}

// WriteReport writes a run report to disk in the given format ("csv", "md", or "txt").
func WriteReport(report *tasks.RunReport, path, format string) (string, error) {
	if format == "" {
		format = "txt"
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = ReportToCSV(report)
	case "md", "markdown":
		data, err = ReportToMarkdown(report)
	case "txt", "text":
		data, err = ReportToText(report)
	default:
		return "", fmt.Errorf("unknown report format %q (want csv, md, or txt)", format)
	}
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "encore_report." + format
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
