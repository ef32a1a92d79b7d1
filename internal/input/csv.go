package input

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

// CSVReader loads events from a local comma-delimited file with a header row.
type CSVReader struct {
	path string
}

// NewCSVReader creates a reader for the given file path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// Source describes the backing file for log output.
func (r *CSVReader) Source() string {
	return fmt.Sprintf("csv file %s", r.path)
}

// Read parses the file into events. Rows with the wrong field count or
// failing validation are skipped with a warning. A missing file or a
// header without the required columns fails the read.
func (r *CSVReader) Read(ctx context.Context) ([]models.Event, []string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open %s: %v", shared.ErrInvalidInput, r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: %s is empty", shared.ErrInvalidInput, r.path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read header from %s: %v", shared.ErrInvalidInput, r.path, err)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		events   []models.Event
		warnings []string
	)

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				warnings = append(warnings, fmt.Sprintf("skipped row %d: %v", line, err))
				continue
			}
			return nil, nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidInput, r.path, err)
		}

		event, err := cols.parseRow(row)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped row %d: %v", line, err))
			continue
		}

		events = append(events, event)
	}

	return events, warnings, nil
}
