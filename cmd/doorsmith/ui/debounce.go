// Package ui provides debouncing utilities for event handling
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg is delivered when a debounce window elapses.
type DebounceMsg struct {
	ID  string
	Tag int
}

// Debouncer coalesces rapid events inside the bubbletea loop. Each Trigger
// bumps a tag and schedules a DebounceMsg; only the message carrying the
// latest tag is Ready, so earlier ones are ignored.
type Debouncer struct {
	id       string
	tag      int
	duration time.Duration
}

// NewDebouncer creates a debouncer with the specified duration
func NewDebouncer(id string, duration time.Duration) *Debouncer {
	return &Debouncer{id: id, duration: duration}
}

// Trigger restarts the window and returns the command that ends it.
func (d *Debouncer) Trigger() tea.Cmd {
	d.tag++
	msg := DebounceMsg{ID: d.id, Tag: d.tag}
	if d.duration <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.duration, func(time.Time) tea.Msg { return msg })
}

// Ready reports whether msg ends the current window.
func (d *Debouncer) Ready(msg DebounceMsg) bool {
	return msg.ID == d.id && msg.Tag == d.tag
}

// Cancel invalidates any pending message.
func (d *Debouncer) Cancel() {
	d.tag++
}

// Tag returns the current tag.
func (d *Debouncer) Tag() int {
	return d.tag
}

// SetDuration changes the window for future triggers.
func (d *Debouncer) SetDuration(duration time.Duration) {
	d.duration = duration
}

// DefaultPreviewDebounce is the recommended debounce for summary previews.
const DefaultPreviewDebounce = 150 * time.Millisecond
