package view

import "strings"

// State is the per-visitor filter selection. Label filter and text search are
// mutually exclusive; every transition returns a new value.
type State struct {
	SelectedLabel string
	SearchText    string
}

func (s State) SelectLabel(label string) State {
	return State{SelectedLabel: label}
}

// Search sets the search text and drops any label filter. Blank text clears
// the search; other text is kept as typed.
func (s State) Search(text string) State {
	if strings.TrimSpace(text) == "" {
		return State{}
	}
	return State{SearchText: text}
}

func (s State) ClearFilters() State {
	return State{}
}

// Filtering reports whether any filter is active.
func (s State) Filtering() bool {
	return s.SelectedLabel != "" || s.SearchText != ""
}
