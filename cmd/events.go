package main

import (
	"context"

	"github.com/hazelfield/encore/internal/formatter"
	"github.com/urfave/cli/v3"
)

// EventsList reads the configured concert list and prints it.
func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	reader, err := r.buildReader(cmd, config)
	if err != nil {
		return err
	}

	r.logger.Infof("reading concerts from %v", reader.Source())

	events, warnings, err := reader.Read(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(events, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d concerts:\n\n", len(events))
	r.writePlain("%s", formatter.EventsToText(events))

	if len(warnings) > 0 {
		r.writePlain("\nWarnings:\n")
		for _, warning := range warnings {
			r.writePlain("  ⚠ %s\n", warning)
		}
	}

	return nil
}

// EventsValidate checks the concert list for malformed rows.
func (r *Runner) EventsValidate(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	reader, err := r.buildReader(cmd, config)
	if err != nil {
		return err
	}

	events, warnings, err := reader.Read(ctx)
	if err != nil {
		return err
	}

	if len(warnings) == 0 {
		r.writePlain("✓ All %d rows are valid\n", len(events))
		return nil
	}

	r.writePlain("✓ %d valid rows\n", len(events))
	r.writePlain("✗ %d malformed rows:\n", len(warnings))
	for _, warning := range warnings {
		r.writePlain("  - %s\n", warning)
	}

	return nil
}
