// Package view derives what the configurator should display from its state.
// Render is pure, so every screen can be asserted on without a terminal.
package view

import (
	"fmt"

	"doorsmith/internal/configurator"
	"doorsmith/internal/customize"
)

// Kind is the mutually exclusive screen state.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindPopulated
	KindEmpty
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindPopulated:
		return "populated"
	case KindEmpty:
		return "empty"
	case KindError:
		return "error"
	default:
		return "idle"
	}
}

const (
	MessageIdle     = "Search for a door to get started."
	MessageLoading  = "Loading results..."
	MessageError    = "Something went wrong while searching."
	MessageFiltered = "No results match the current filters."
)

// MessageNoResults is the empty-state message when the API returned nothing.
func MessageNoResults(query string) string {
	return fmt.Sprintf("No results found for %q.", query)
}

// Card is one rendered product.
type Card struct {
	Key         int
	ID          int
	Title       string
	Description string
	Price       string
	Material    string
	ImageURL    string
	Focused     bool
}

// Screen is everything a front end needs to draw one frame.
type Screen struct {
	Kind     Kind
	Message  string
	Cards    []Card
	CanRetry bool
	Status   string
	Summary  string
	Filter   string
	Sort     string
}

// Render maps a configurator state to a screen.
func Render(s configurator.State) Screen {
	scr := Screen{
		Summary: s.Summary,
		Filter:  s.Filter.Material.String(),
		Sort:    s.Filter.Sort.Label(),
	}

	switch {
	case !s.Searched():
		scr.Kind = KindIdle
		scr.Message = MessageIdle
	case s.Results.Pending():
		scr.Kind = KindLoading
		scr.Message = MessageLoading
	case s.Results.Failed():
		scr.Kind = KindError
		scr.Message = MessageError
		scr.CanRetry = true
	case s.Results.Resolved():
		raw := s.Results.Items()
		shown := s.Displayed()
		switch {
		case len(raw) == 0:
			scr.Kind = KindEmpty
			scr.Message = MessageNoResults(s.Results.Query())
		case len(shown) == 0:
			scr.Kind = KindEmpty
			scr.Message = MessageFiltered
		default:
			scr.Kind = KindPopulated
			scr.Cards = make([]Card, 0, len(shown))
			for _, item := range shown {
				scr.Cards = append(scr.Cards, Card{
					Key:         item.Key,
					ID:          item.ID,
					Title:       item.Title,
					Description: item.Description,
					Price:       customize.FormatPrice(item.BasePrice),
					Material:    item.Material.String(),
					ImageURL:    item.ImageURL,
					Focused:     s.Focus != nil && s.Focus.Key == item.Key,
				})
			}
		}
	}

	scr.Status = status(s, scr)
	return scr
}

func status(s configurator.State, scr Screen) string {
	if s.Notice != "" {
		return s.Notice
	}
	switch scr.Kind {
	case KindLoading:
		return MessageLoading
	case KindPopulated:
		return fmt.Sprintf("Showing %d result(s).", len(scr.Cards))
	case KindError:
		return MessageError
	case KindEmpty:
		return scr.Message
	default:
		return ""
	}
}
