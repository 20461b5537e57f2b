// Package ui provides the Bubble Tea TUI for BookLegend.
package ui

import "github.com/abelbrown/booklegend/internal/aggregator"

// ListUpdated is sent when the list screen state changes.
type ListUpdated struct {
	View aggregator.ListView
}

// DetailUpdated is sent when the detail screen state changes.
type DetailUpdated struct {
	View aggregator.DetailView
}

// FavoritesUpdated is sent when the favorites screen state changes.
type FavoritesUpdated struct {
	View aggregator.ListView
}

// FavoriteIDsUpdated carries the stored favorite set, for list markers and
// the detail toggle label.
type FavoriteIDsUpdated struct {
	IDs []string
}

// ThemeChanged is sent when the dark mode preference changes.
type ThemeChanged struct {
	Dark bool
}

// ActionFailed reports a background write (favorite toggle, theme) that
// did not persist.
type ActionFailed struct {
	Err error
}
