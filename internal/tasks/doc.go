// Package tasks orchestrates the concert-to-playlist pipeline.
//
// [PlaylistEngine] processes input events sequentially: for each event it
// fetches candidate setlists, disambiguates them by venue/city similarity,
// matches every performed song against the streaming catalog, and builds one
// playlist per concert with tracks in performance order (openers before the
// headliner).
//
// Failure handling follows a skip-and-warn policy: malformed rows, events
// without setlists, and unmatched songs are recorded as warnings on the
// [RunReport] while the run continues. Only systemic failures, such as
// rejected credentials or an unreadable input source, abort the run.
//
// Long-running operations emit [ProgressUpdate] values through an optional
// channel. Sends never block; slow consumers simply miss intermediate updates.
package tasks
