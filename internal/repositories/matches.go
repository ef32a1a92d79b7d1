package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/shared"
)

// MatchRepository implements [models.Repository] for [models.CachedMatch] persistence.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new [MatchRepository] with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a new cached match into the database with generated ID and sequence
func (r *MatchRepository) Create(match *models.CachedMatch) error {
	sequence, err := NextSequence(r.db, "matches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	match.SetID(id)

	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO matches (id, sequence, song_key, title, artist, track_id, track_uri, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, match.SongKey(), match.Title(), match.Artist(),
		match.TrackID(), match.TrackURI(), match.Score(), match.CreatedAt(), match.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return nil
}

// Get retrieves a cached match by ID, excluding soft-deleted matches
func (r *MatchRepository) Get(id string) (*models.CachedMatch, error) {
	query := `
		SELECT id, sequence, song_key, title, artist, track_id, track_uri, score, created_at, updated_at, deleted_at
		FROM matches
		WHERE id = ? AND deleted_at IS NULL
	`

	match, err := r.scanOne(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query match: %w", err)
	}

	return match, nil
}

// GetBySongKey retrieves a cached match by its normalized song key.
// Returns shared.ErrNoMatch when no cache entry exists.
func (r *MatchRepository) GetBySongKey(songKey string) (*models.CachedMatch, error) {
	query := `
		SELECT id, sequence, song_key, title, artist, track_id, track_uri, score, created_at, updated_at, deleted_at
		FROM matches
		WHERE song_key = ? AND deleted_at IS NULL
	`

	match, err := r.scanOne(r.db.QueryRow(query, songKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no cached match for %q", shared.ErrNoMatch, songKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query match: %w", err)
	}

	return match, nil
}

// Upsert stores a match by song key, creating or refreshing the cache entry.
func (r *MatchRepository) Upsert(match *models.CachedMatch) error {
	existing, err := r.GetBySongKey(match.SongKey())
	if errors.Is(err, shared.ErrNoMatch) {
		return r.Create(match)
	}
	if err != nil {
		return err
	}

	existing.SetTrack(match.TrackID(), match.TrackURI())
	existing.SetScore(match.Score())
	return r.Update(existing)
}

// Update modifies an existing cached match in the database
func (r *MatchRepository) Update(match *models.CachedMatch) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	match.SetUpdatedAt(now)

	query := `
		UPDATE matches
		SET song_key = ?, title = ?, artist = ?, track_id = ?, track_uri = ?, score = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, match.SongKey(), match.Title(), match.Artist(),
		match.TrackID(), match.TrackURI(), match.Score(), now, match.ID())
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("match not found or already deleted: %s", match.ID())
	}

	return nil
}

// Delete soft-deletes a cached match by ID
func (r *MatchRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE matches
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("match not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all cached matches matching the given criteria, excluding soft-deleted matches
func (r *MatchRepository) List(criteria map[string]any) ([]*models.CachedMatch, error) {
	query := `
		SELECT id, sequence, song_key, title, artist, track_id, track_uri, score, created_at, updated_at, deleted_at
		FROM matches
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.CachedMatch
	for rows.Next() {
		match, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *MatchRepository) scanOne(row scanner) (*models.CachedMatch, error) {
	var (
		id        string
		sequence  int
		songKey   string
		title     string
		artist    string
		trackID   sql.NullString
		trackURI  sql.NullString
		score     float64
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &songKey, &title, &artist, &trackID, &trackURI, &score, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	match := models.NewCachedMatch(sequence, songKey, title, artist, trackID.String, trackURI.String, score)
	match.SetID(id)
	match.SetCreatedAt(createdAt)
	match.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		match.SetDeletedAt(&deletedAt.Time)
	}

	return match, nil
}
