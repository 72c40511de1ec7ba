package results

import (
	"slices"

	"doorsmith/internal/catalog"
	"doorsmith/internal/logging"
)

// Store holds the unfiltered items of the most recently completed query.
// It is a value type: every transition returns a new Store.
//
// Each Begin issues a new sequence number. Only the response carrying the
// latest number may settle the store, so a slow earlier request can never
// overwrite a newer result.
type Store struct {
	query    string
	seq      uint64
	pending  bool
	resolved bool
	failed   bool
	items    []catalog.DisplayItem
}

// Begin records a newly issued query and returns its sequence number.
// Items from the previous query are kept until the new one settles.
func (s Store) Begin(query string) (Store, uint64) {
	s.seq++
	s.query = query
	s.pending = true
	logging.ResultsDebug("Begin seq=%d query=%q", s.seq, query)
	return s, s.seq
}

// Accept replaces the items wholesale if seq is the latest pending query.
func (s Store) Accept(seq uint64, items []catalog.DisplayItem) (Store, bool) {
	if !s.isLatest(seq) {
		logging.ResultsDebug("Dropping stale results seq=%d (latest=%d)", seq, s.seq)
		return s, false
	}
	s.pending = false
	s.resolved = true
	s.failed = false
	s.items = make([]catalog.DisplayItem, len(items))
	for i, it := range items {
		it.Key = i
		s.items[i] = it
	}
	logging.Results("Accepted %d item(s) for %q", len(s.items), s.query)
	return s, true
}

// Fail settles the latest pending query as failed and clears its items.
func (s Store) Fail(seq uint64) (Store, bool) {
	if !s.isLatest(seq) {
		logging.ResultsDebug("Dropping stale failure seq=%d (latest=%d)", seq, s.seq)
		return s, false
	}
	s.pending = false
	s.resolved = true
	s.failed = true
	s.items = nil
	return s, true
}

func (s Store) isLatest(seq uint64) bool {
	return s.pending && seq == s.seq
}

// Items returns the unfiltered items of the last settled query.
func (s Store) Items() []catalog.DisplayItem { return s.items }

// Query returns the most recently issued query.
func (s Store) Query() string { return s.query }

// Seq returns the most recently issued sequence number.
func (s Store) Seq() uint64 { return s.seq }

// Pending reports whether the latest query is still in flight.
func (s Store) Pending() bool { return s.pending }

// Resolved reports whether the latest query has settled.
func (s Store) Resolved() bool { return s.resolved && !s.pending }

// Failed reports whether the latest settled query failed.
func (s Store) Failed() bool { return s.failed && !s.pending }

// Find returns the item with the given key from the current items.
func (s Store) Find(key int) (catalog.DisplayItem, bool) {
	if key < 0 || key >= len(s.items) {
		return catalog.DisplayItem{}, false
	}
	return s.items[key], true
}

// Match finds the same product in the current items: same ID and title,
// preferring the one at want.Key.
func (s Store) Match(want catalog.DisplayItem) (catalog.DisplayItem, bool) {
	same := func(it catalog.DisplayItem) bool { return it.ID == want.ID && it.Title == want.Title }
	if it, ok := s.Find(want.Key); ok && same(it) {
		return it, true
	}
	i := slices.IndexFunc(s.items, same)
	if i < 0 {
		return catalog.DisplayItem{}, false
	}
	return s.items[i], true
}
