package session

import (
	"errors"
	"fmt"
)

// IntentType names a user action.
type IntentType string

const (
	IntentSetSearch           IntentType = "set_search"
	IntentToggleSelection     IntentType = "toggle_selection"
	IntentClearSelection      IntentType = "clear_selection"
	IntentToggleXLog          IntentType = "toggle_x_log"
	IntentToggleYLog          IntentType = "toggle_y_log"
	IntentSetPage             IntentType = "set_page"
	IntentSetSeriesVisibility IntentType = "set_series_visibility"
)

// Intent is one user action. Only the fields relevant to Type are read:
// Field and Term for set_search, ID for toggle_selection, Page for set_page,
// ID and Visible for set_series_visibility.
type Intent struct {
	Type    IntentType `json:"type"`
	Field   string     `json:"field,omitempty"`
	Term    string     `json:"term,omitempty"`
	ID      int        `json:"id,omitempty"`
	Page    int        `json:"page,omitempty"`
	Visible *bool      `json:"visible,omitempty"`
}

// ErrInvalidIntent is returned for malformed intents.
var ErrInvalidIntent = errors.New("invalid intent")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidIntent, fmt.Sprintf(format, args...))
}

// Effect tells the caller what follow-up an applied intent needs.
type Effect struct {
	// Refetch is set when the selection changed and series must be resolved.
	Refetch bool `json:"refetch"`
}

// SetSearch builds a set_search intent.
func SetSearch(field, term string) Intent {
	return Intent{Type: IntentSetSearch, Field: field, Term: term}
}

// ToggleSelection builds a toggle_selection intent.
func ToggleSelection(id int) Intent { return Intent{Type: IntentToggleSelection, ID: id} }

// SetPage builds a set_page intent.
func SetPage(page int) Intent { return Intent{Type: IntentSetPage, Page: page} }

// SetSeriesVisibility builds a set_series_visibility intent.
func SetSeriesVisibility(id int, visible bool) Intent {
	return Intent{Type: IntentSetSeriesVisibility, ID: id, Visible: &visible}
}
