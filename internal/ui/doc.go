// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building playlists:
//  1. [EventListView] : Browse the loaded concerts
//  2. [ConfirmView] : Confirm the run
//  3. [RunView] : Monitor real-time progress updates
//  4. [ResultView] : Display run totals and warnings
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
