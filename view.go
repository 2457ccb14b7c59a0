package main

import "sync"

// ListMode selects which listing a moderator is browsing.
type ListMode string

const (
	ModeReports ListMode = "reports"
	ModeData    ListMode = "data"
)

// ViewState is one moderator's console state. Interaction handlers run in
// their own goroutines, so all access goes through the store's Update/Snapshot.
type ViewState struct {
	Mode       ListMode
	ReportView ReportView
	DataView   DataView
	Filters    FilterState
	Sort       SortState
	Paging     Pagination
	Fetching   bool

	// fetchGen fences stale responses: it is bumped by every page, filter
	// or mode change, and a completed fetch is dropped unless its captured
	// generation still matches.
	fetchGen uint64

	Records []DataRecord
	Rows    []DataRow

	Verify *VerifySession
}

// BeginFetch marks a fetch in flight and returns the generation token the
// completion must present.
func (v *ViewState) BeginFetch() uint64 {
	v.fetchGen++
	v.Fetching = true
	return v.fetchGen
}

// CompleteFetch reports whether a finishing fetch is still current. Stale
// completions leave the state untouched.
func (v *ViewState) CompleteFetch(gen uint64) bool {
	if gen != v.fetchGen {
		return false
	}
	v.Fetching = false
	return true
}

// Invalidate supersedes any in-flight fetch without starting a new one.
func (v *ViewState) Invalidate() {
	v.fetchGen++
	v.Fetching = false
}

// ViewStore keeps per-moderator view state keyed by Slack user ID.
type ViewStore struct {
	mu       sync.Mutex
	pageSize int
	views    map[string]*ViewState
}

func NewViewStore(pageSize int) *ViewStore {
	return &ViewStore{pageSize: pageSize, views: make(map[string]*ViewState)}
}

func (s *ViewStore) get(userID string) *ViewState {
	v, ok := s.views[userID]
	if !ok {
		v = &ViewState{
			Mode:       ModeReports,
			ReportView: ReportUnqualified,
			DataView:   DataAll,
			Filters:    EmptyFilter(),
			Paging:     NewPagination(s.pageSize),
		}
		s.views[userID] = v
	}
	return v
}

// Update runs fn on the user's view state under the store lock.
func (s *ViewStore) Update(userID string, fn func(*ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.get(userID))
}

// Snapshot returns a copy of the user's view state for rendering. The
// Records/Rows slices are shared but treated as read-only projections.
func (s *ViewStore) Snapshot(userID string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.get(userID)
}
