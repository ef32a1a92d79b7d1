// Package models defines domain entities and persistence interfaces for the encore playlist generator.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing input rows and external service data
//   - [Event] : One concert attended, as read from an input row
//   - [Setlist] : A concert setlist with one or more performing acts
//   - [SetAct] : An ordered run of songs by a single performer
//   - [Track] : Catalog track metadata from the streaming service
//   - [Playlist] : Basic playlist metadata from the streaming service
//   - [MatchResult] : Outcome of matching one setlist song against the catalog
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CachedMatch] : Previously resolved song-to-track matches, keyed by normalized song
//   - [Run] : One pipeline execution with its counters and timing
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
