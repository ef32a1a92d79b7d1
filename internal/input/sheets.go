package input

import (
	"context"
	"fmt"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsReader loads events from a Google Sheet via the Sheets API.
// The first row of the requested range is treated as the header.
type SheetsReader struct {
	credentialsFile string
	sheetID         string
	readRange       string

	// newService is swapped in tests to avoid real API construction.
	newService func(ctx context.Context) (*sheets.Service, error)
}

// NewSheetsReader creates a reader for the given spreadsheet and range,
// authenticating with a service account key file.
func NewSheetsReader(credentialsFile, sheetID, readRange string) *SheetsReader {
	if readRange == "" {
		readRange = "Sheet1!A:E"
	}
	r := &SheetsReader{credentialsFile: credentialsFile, sheetID: sheetID, readRange: readRange}
	r.newService = func(ctx context.Context) (*sheets.Service, error) {
		opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
		if r.credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(r.credentialsFile))
		}
		return sheets.NewService(ctx, opts...)
	}
	return r
}

// Source describes the backing sheet for log output.
func (r *SheetsReader) Source() string {
	return fmt.Sprintf("google sheet %s (%s)", r.sheetID, r.readRange)
}

// Read fetches the configured range and parses rows into events.
// Rows failing validation are skipped with a warning.
func (r *SheetsReader) Read(ctx context.Context) ([]models.Event, []string, error) {
	svc, err := r.newService(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create sheets client: %v", shared.ErrAuthFailed, err)
	}

	resp, err := svc.Spreadsheets.Values.Get(r.sheetID, r.readRange).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read sheet %s: %v", shared.ErrAPIRequest, r.sheetID, err)
	}

	if len(resp.Values) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %s range %s is empty", shared.ErrInvalidInput, r.sheetID, r.readRange)
	}

	header := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[i] = fmt.Sprint(cell)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		events   []models.Event
		warnings []string
	)

	for i, rawRow := range resp.Values[1:] {
		row := make([]string, len(rawRow))
		for j, cell := range rawRow {
			row[j] = fmt.Sprint(cell)
		}

		event, err := cols.parseRow(row)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped row %d: %v", i+2, err))
			continue
		}

		events = append(events, event)
	}

	return events, warnings, nil
}
