package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

// RunRepository implements [models.Repository] for [models.Run] persistence.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, events_total, events_skipped, playlists_created, playlists_updated,
			songs_matched, songs_failed, dry_run, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, run.EventsTotal(), run.EventsSkipped(),
		run.PlaylistsCreated(), run.PlaylistsUpdated(), run.SongsMatched(), run.SongsFailed(),
		run.DryRun(), run.StartedAt(), nullableTime(run.CompletedAt()), run.CreatedAt(), run.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := runSelect + " WHERE id = ? AND deleted_at IS NULL"

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET events_total = ?, events_skipped = ?, playlists_created = ?, playlists_updated = ?,
			songs_matched = ?, songs_failed = ?, dry_run = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, run.EventsTotal(), run.EventsSkipped(),
		run.PlaylistsCreated(), run.PlaylistsUpdated(), run.SongsMatched(), run.SongsFailed(),
		run.DryRun(), nullableTime(run.CompletedAt()), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first, excluding soft-deleted runs
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := runSelect + " WHERE deleted_at IS NULL"

	args := []any{}

	if dryRun, ok := criteria["dry_run"].(bool); ok {
		query += " AND dry_run = ?"
		args = append(args, dryRun)
	}

	query += " ORDER BY started_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

const runSelect = `
	SELECT id, sequence, events_total, events_skipped, playlists_created, playlists_updated,
		songs_matched, songs_failed, dry_run, started_at, completed_at, created_at, updated_at, deleted_at
	FROM runs`

func scanRun(row scanner) (*models.Run, error) {
	var (
		id               string
		sequence         int
		eventsTotal      int
		eventsSkipped    int
		playlistsCreated int
		playlistsUpdated int
		songsMatched     int
		songsFailed      int
		dryRun           bool
		startedAt        time.Time
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &eventsTotal, &eventsSkipped, &playlistsCreated, &playlistsUpdated,
		&songsMatched, &songsFailed, &dryRun, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	run := models.NewRun(sequence, dryRun)
	run.SetID(id)
	run.SetCounters(eventsTotal, eventsSkipped, playlistsCreated, playlistsUpdated, songsMatched, songsFailed)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
