// Package repositories implements SQLite-backed persistence for cached
// song matches and run history.
//
// [MatchRepository] stores resolved song-to-track matches keyed by the
// normalized "title|artist" form, letting repeat runs skip catalog searches.
// [RunRepository] keeps one row per pipeline execution for the history and
// report commands.
//
// Both use soft deletes (deleted_at) and monotonically increasing per-table
// sequence numbers generated by [NextSequence]. Schema setup lives in the
// shared package's embedded migrations.
package repositories
