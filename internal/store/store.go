// Package store holds the live session dataset: the raw snapshots as
// fetched, the deduplicated working set, the active view and all per-listing
// bookkeeping. Nothing here is persisted; a reload rebuilds everything.
package store

import (
	"sync"

	"buybox_console/internal/config"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/catalog"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/pkg/schedule"
)

type Store struct {
	mu sync.Mutex

	cfg      config.Thresholds
	calc     pricing.Calculator
	pipeline catalog.Pipeline
	bypass   *BypassWindow

	// raw keeps every snapshot as fetched; listings is the deduplicated
	// working set the view is computed from.
	raw      []entity.Listing
	listings []entity.Listing
	counts   map[string]int

	// latestOnly toggles deduplication off for operators who want the full
	// snapshot history in the table.
	latestOnly bool

	criteria catalog.Criteria
	ordered  []entity.Listing
	total    int
	page     int

	updates      map[string]entity.UpdateState
	selected     map[string]struct{}
	customPrices map[string]float64

	// Guards: background refilters are deferred while any update is in
	// flight or a page response is being assembled, so neither can yank
	// the view out from under the operator. Updates to distinct listings
	// run concurrently, hence a counter.
	activeUpdates   int
	paginating      bool
	refilterPending bool
}

func New(cfg config.Thresholds, calc pricing.Calculator, scheduler schedule.Scheduler) *Store {
	s := &Store{
		cfg:          cfg,
		calc:         calc,
		pipeline:     catalog.NewPipeline(cfg),
		counts:       make(map[string]int),
		latestOnly:   true,
		page:         1,
		updates:      make(map[string]entity.UpdateState),
		selected:     make(map[string]struct{}),
		customPrices: make(map[string]float64),
	}
	s.bypass = NewBypassWindow(scheduler, cfg.BypassWindow, func(string) {
		s.RefilterPreservingPage()
	})

	return s
}

// ReplaceAll swaps in a freshly fetched dataset. Selection, custom prices
// and bypass windows from the previous session are discarded; the view
// resets to the first page under the current criteria.
func (s *Store) ReplaceAll(snapshots []entity.Listing) {
	s.bypass.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = make([]entity.Listing, 0, len(snapshots))
	for _, l := range snapshots {
		s.raw = append(s.raw, s.calc.Enrich(l))
	}

	s.listings = catalog.LatestPerSKU(s.raw)
	s.counts = catalog.SnapshotCounts(s.raw)

	s.selected = make(map[string]struct{})
	s.customPrices = make(map[string]float64)

	s.page = 1
	s.refilterLocked()
}

// ReplaceOne substitutes a single record by id in both the raw and the
// deduplicated sets, then recomputes the view without losing the page.
// Records the store has never seen are ignored.
func (s *Store) ReplaceOne(l entity.Listing) bool {
	l = s.calc.Enrich(l)

	s.mu.Lock()

	replaced := false

	for i := range s.raw {
		if s.raw[i].ID == l.ID {
			s.raw[i] = l
			replaced = true
		}
	}

	for i := range s.listings {
		if s.listings[i].ID == l.ID {
			s.listings[i] = l
		}
	}

	s.mu.Unlock()

	if replaced {
		s.RefilterPreservingPage()
	}

	return replaced
}

// All returns a copy of the deduplicated working set, unfiltered.
func (s *Store) All() []entity.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]entity.Listing, len(s.listings))
	copy(all, s.listings)

	return all
}

// Get looks the id up in the active working set, so with deduplication off
// the superseded snapshots the operator sees stay addressable.
func (s *Store) Get(id string) (entity.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.listings
	if !s.latestOnly {
		working = s.raw
	}

	for _, l := range working {
		if l.ID == id {
			return l, true
		}
	}

	return entity.Listing{}, false
}

// SetCriteria applies new filter criteria and resets to the first page.
// While an update is in flight the new criteria are stored but the view is
// left untouched until the update settles.
func (s *Store) SetCriteria(c catalog.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria = c
	s.page = 1

	if s.activeUpdates > 0 || s.paginating {
		s.refilterPending = true
		return
	}

	s.refilterLocked()
}

func (s *Store) Criteria() catalog.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.criteria
}

// SetLatestOnly toggles deduplication of the working set.
func (s *Store) SetLatestOnly(latestOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latestOnly == latestOnly {
		return
	}

	s.latestOnly = latestOnly
	s.page = 1
	s.refilterLocked()
}

func (s *Store) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = clampPage(page, s.total, s.cfg.PerPage)
}

// BeginPagination defers background refilters while a page response is
// being assembled, so the rows the operator receives match the page header.
func (s *Store) BeginPagination() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paginating = true
}

func (s *Store) EndPagination() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paginating = false

	if s.refilterPending {
		s.refilterPending = false
		s.refilterLocked()
	}
}

// RefilterPreservingPage recomputes the view under the current criteria
// without resetting pagination. Deferred while a guard flag is set.
func (s *Store) RefilterPreservingPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeUpdates > 0 || s.paginating {
		s.refilterPending = true
		return
	}

	s.refilterLocked()
}

func (s *Store) refilterLocked() {
	working := s.listings
	if !s.latestOnly {
		working = s.raw
	}

	result := s.pipeline.Apply(working, s.criteria, s.bypass.Active())

	s.ordered = result.Ordered
	s.total = result.Total
	s.page = clampPage(s.page, s.total, s.cfg.PerPage)
}

// BeginUpdate raises the in-flight guard. Updates to distinct listings hold
// it together; only background refilters are suppressed while any is live.
func (s *Store) BeginUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeUpdates++
}

// EndUpdate lowers the guard and, once the last update settles, applies any
// refilter deferred in the meantime.
func (s *Store) EndUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeUpdates--

	if s.activeUpdates == 0 && s.refilterPending {
		s.refilterPending = false
		s.refilterLocked()
	}
}

// MarkUpdated opens the bypass window for id and refreshes the view so the
// record is visible immediately.
func (s *Store) MarkUpdated(id string) {
	s.bypass.Add(id)
	s.RefilterPreservingPage()
}

func (s *Store) InBypass(id string) bool {
	return s.bypass.Contains(id)
}

// Visible returns the current page of the filtered view.
func (s *Store) Visible() []entity.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	perPage := s.cfg.PerPage
	start := (s.page - 1) * perPage

	if start >= len(s.ordered) {
		return nil
	}

	end := start + perPage
	if end > len(s.ordered) {
		end = len(s.ordered)
	}

	page := make([]entity.Listing, end-start)
	copy(page, s.ordered[start:end])

	return page
}

func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.page
}

func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total
}

func (s *Store) RawTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.raw)
}

// Counts reports snapshots per SKU from the last full load.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int, len(s.counts))
	for sku, n := range s.counts {
		counts[sku] = n
	}

	return counts
}

func (s *Store) UpdateStateFor(id string) entity.UpdateState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.updates[id]; ok {
		return state
	}

	return entity.UpdateState{Phase: entity.UpdateIdle}
}

func (s *Store) SetUpdateState(id string, state entity.UpdateState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates[id] = state
}

func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected[id] = struct{}{}
}

func (s *Store) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.selected, id)
}

// Selected returns selected ids in working-set order.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.selected))

	for _, l := range s.listings {
		if _, ok := s.selected[l.ID]; ok {
			ids = append(ids, l.ID)
		}
	}

	return ids
}

func (s *Store) SetCustomPrice(id string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customPrices[id] = price
}

func (s *Store) ClearCustomPrice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.customPrices, id)
}

func (s *Store) CustomPrice(id string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.customPrices[id]

	return price, ok
}

func clampPage(page, total, perPage int) int {
	if page < 1 {
		return 1
	}

	if perPage <= 0 {
		return 1
	}

	maxPage := (total + perPage - 1) / perPage
	if maxPage < 1 {
		maxPage = 1
	}

	if page > maxPage {
		return maxPage
	}

	return page
}
