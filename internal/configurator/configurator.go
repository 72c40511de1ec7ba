// Package configurator owns the door configurator's state and the pure
// transition function that every front end drives.
//
// Front ends send an Event to Update and execute the Effect it returns:
// a FetchEffect runs a catalog search and reports back with SearchSucceeded
// or SearchFailed carrying the same Seq; an EmitEffect hands a build payload
// to the configured sinks.
package configurator

import (
	"fmt"
	"strings"
	"time"

	"doorsmith/internal/catalog"
	"doorsmith/internal/customize"
	"doorsmith/internal/results"
)

const (
	NoticeEmptyQuery = "Please enter a search term."
)

// State is the single owned configurator state.
type State struct {
	Results   results.Store
	Filter    results.FilterSortConfig
	Selection customize.Selection

	// Focus is the previewed item, nil when nothing is selected.
	Focus *catalog.DisplayItem
	// Summary is the order summary for Focus and Selection.
	Summary string
	// Notice is a transient status message.
	Notice string
	// Err is the cause of the latest failed search.
	Err error
	// LastBuild is the most recent add-to-build payload.
	LastBuild *customize.Payload
}

// New returns the initial idle state.
func New(filter results.FilterSortConfig) State {
	return State{
		Filter:  filter,
		Summary: customize.NoProductSelected,
	}
}

// Displayed returns the filtered and sorted items to show.
func (s State) Displayed() []catalog.DisplayItem {
	return results.Apply(s.Results.Items(), s.Filter)
}

// Searched reports whether any search has been issued.
func (s State) Searched() bool {
	return s.Results.Seq() > 0
}

// Event is an input to Update.
type Event interface{ isEvent() }

type (
	SearchSubmitted struct{ Query string }
	SearchSucceeded struct {
		Seq   uint64
		Items []catalog.DisplayItem
	}
	SearchFailed struct {
		Seq uint64
		Err error
	}
	RetryRequested   struct{}
	FilterChanged    struct{ Material catalog.MaterialTag }
	SortChanged      struct{ Sort results.SortKey }
	SelectionChanged struct{ Selection customize.Selection }
	// Card actions address items by DisplayItem.Key.
	PreviewRequested struct{ Key int }
	// AddToBuildRequested carries the time of the action so Update stays pure.
	AddToBuildRequested struct {
		Key int
		At  time.Time
	}
)

func (SearchSubmitted) isEvent()     {}
func (SearchSucceeded) isEvent()     {}
func (SearchFailed) isEvent()        {}
func (RetryRequested) isEvent()      {}
func (FilterChanged) isEvent()       {}
func (SortChanged) isEvent()         {}
func (SelectionChanged) isEvent()    {}
func (PreviewRequested) isEvent()    {}
func (AddToBuildRequested) isEvent() {}

// Effect is work Update asks the caller to perform. A nil Effect means none.
type Effect interface{ isEffect() }

// FetchEffect asks the caller to run a search and report back with Seq.
type FetchEffect struct {
	Seq   uint64
	Query string
}

// EmitEffect asks the caller to send Payload to the build sinks.
type EmitEffect struct {
	Payload customize.Payload
}

func (FetchEffect) isEffect() {}
func (EmitEffect) isEffect()  {}

// Update applies ev to s and returns the next state and any effect.
func Update(s State, ev Event) (State, Effect) {
	switch ev := ev.(type) {
	case SearchSubmitted:
		return submit(s, ev.Query)

	case RetryRequested:
		if !s.Searched() {
			return s, nil
		}
		return submit(s, s.Results.Query())

	case SearchSucceeded:
		next, ok := s.Results.Accept(ev.Seq, ev.Items)
		if !ok {
			return s, nil
		}
		s.Results = next
		s.Err = nil
		s.Notice = ""
		s = refocus(s)
		return s, nil

	case SearchFailed:
		next, ok := s.Results.Fail(ev.Seq)
		if !ok {
			return s, nil
		}
		s.Results = next
		s.Err = ev.Err
		s.Notice = ""
		s = refocus(s)
		return s, nil

	case FilterChanged:
		s.Filter.Material = ev.Material
		return s, nil

	case SortChanged:
		s.Filter.Sort = ev.Sort
		return s, nil

	case SelectionChanged:
		s.Selection = ev.Selection
		s.Summary = customize.Compose(s.Focus, s.Selection)
		return s, nil

	case PreviewRequested:
		item, ok := s.Results.Find(ev.Key)
		if !ok {
			return s, nil
		}
		s.Focus = &item
		s.Summary = customize.Compose(s.Focus, s.Selection)
		return s, nil

	case AddToBuildRequested:
		item, ok := s.Results.Find(ev.Key)
		if !ok {
			return s, nil
		}
		s.Focus = &item
		s.Summary = customize.Compose(s.Focus, s.Selection)
		payload := customize.NewPayload(item, s.Selection, ev.At)
		s.LastBuild = &payload
		s.Notice = fmt.Sprintf("Added %q to build.", item.Title)
		return s, EmitEffect{Payload: payload}
	}
	return s, nil
}

func submit(s State, query string) (State, Effect) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.Notice = NoticeEmptyQuery
		return s, nil
	}
	var seq uint64
	s.Results, seq = s.Results.Begin(query)
	s.Err = nil
	s.Notice = ""
	return s, FetchEffect{Seq: seq, Query: query}
}

// refocus drops the focus when the focused item is no longer in the results.
func refocus(s State) State {
	if s.Focus == nil {
		return s
	}
	if item, ok := s.Results.Match(*s.Focus); ok {
		s.Focus = &item
	} else {
		s.Focus = nil
	}
	s.Summary = customize.Compose(s.Focus, s.Selection)
	return s
}
