// package input loads concert rows from a local CSV file or a remote Google Sheet.
//
// Both readers produce the same ordered sequence of [models.Event] values.
// Malformed rows are skipped with a warning; a missing required column fails
// the whole read.
package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

// Reader produces a finite, ordered sequence of events from some tabular source.
type Reader interface {
	// Read returns all parseable events plus one warning per skipped row.
	Read(ctx context.Context) ([]models.Event, []string, error)
	// Source describes the backing source for log output.
	Source() string
}

// NewReader selects a reader from configuration.
func NewReader(cfg *shared.Config) (Reader, error) {
	switch strings.ToLower(cfg.Input.Source) {
	case "csv", "":
		if cfg.Input.CSVPath == "" {
			return nil, fmt.Errorf("%w: csv input requires input.csv_path", shared.ErrInvalidConfig)
		}
		return NewCSVReader(cfg.Input.CSVPath), nil
	case "sheet", "sheets":
		if cfg.Credentials.Google.SheetID == "" {
			return nil, fmt.Errorf("%w: sheet input requires credentials.google.sheet_id", shared.ErrInvalidConfig)
		}
		return NewSheetsReader(cfg.Credentials.Google.ServiceAccountFile, cfg.Credentials.Google.SheetID, cfg.Credentials.Google.SheetRange), nil
	default:
		return nil, fmt.Errorf("%w: unknown input source %q (want csv or sheet)", shared.ErrInvalidConfig, cfg.Input.Source)
	}
}

// columns maps header names to row positions for the required and optional event fields.
type columns struct {
	artist   int
	name     int
	venue    int
	city     int
	date     int
	festival int
}

// parseHeader locates the event columns in a header row.
// Column matching is case-insensitive; artist and date are required.
func parseHeader(header []string) (columns, error) {
	cols := columns{artist: -1, name: -1, venue: -1, city: -1, date: -1, festival: -1}

	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "artist", "band":
			cols.artist = i
		case "event_name", "event", "tour":
			cols.name = i
		case "venue":
			cols.venue = i
		case "city":
			cols.city = i
		case "date":
			cols.date = i
		case "is_festival", "festival":
			cols.festival = i
		}
	}

	if cols.artist < 0 {
		return cols, fmt.Errorf("%w: input is missing required column \"artist\"", shared.ErrInvalidInput)
	}
	if cols.date < 0 {
		return cols, fmt.Errorf("%w: input is missing required column \"date\"", shared.ErrInvalidInput)
	}

	return cols, nil
}

// parseRow builds an event from one data row using the located columns.
func (c columns) parseRow(row []string) (models.Event, error) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	event := models.Event{
		Artist:   cell(c.artist),
		Name:     cell(c.name),
		Venue:    cell(c.venue),
		City:     cell(c.city),
		Date:     cell(c.date),
		Festival: strings.EqualFold(cell(c.festival), "true"),
	}

	if err := event.Validate(); err != nil {
		return models.Event{}, err
	}

	return event, nil
}
