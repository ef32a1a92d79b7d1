package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hazelfield/encore/internal/shared"
	"github.com/hazelfield/encore/internal/tasks"
	"github.com/hazelfield/encore/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist building.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	reader, err := r.buildReader(cmd, config)
	if err != nil {
		return err
	}

	events, _, err := reader.Read(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("%w: no concerts found in %s", shared.ErrInvalidInput, reader.Source())
	}

	db, err := r.openDatabase(config)
	if err != nil {
		r.logger.Warn("match cache unavailable", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(os.TempDir(), "encore-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(shared.NewLogger(logFile))

	engine, err := r.buildEngine(reader, db, tasks.Options{
		Threshold:   config.Matcher.Threshold,
		SearchLimit: config.Matcher.SearchLimit,
		TopTracks:   config.Playlists.TopTracks,
		Public:      config.Playlists.Public,
		DryRun:      config.Playlists.DryRun,
	})
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, events, engine)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
