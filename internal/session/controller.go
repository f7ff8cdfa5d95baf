// Package session owns the single in-memory session: the current dataset,
// the confirmed field selection and the derived view state (search term,
// scope, match sequence, pagination). Every mutation is serialized behind the
// controller's mutex; components below it stay free of UI coupling.
package session

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"cardstock/domain/cards"
	"cardstock/internal/importer"
	"cardstock/internal/render"
	"cardstock/internal/search"
	"cardstock/internal/selection"
	"cardstock/internal/store"
)

// Mode names the session's UI phase.
type Mode string

const (
	// ModeEmpty means no dataset is loaded yet.
	ModeEmpty Mode = "empty"
	// ModeSelecting means a dataset is imported and awaits column confirmation.
	ModeSelecting Mode = "selecting"
	// ModeDisplaying means cards are shown and searchable.
	ModeDisplaying Mode = "displaying"
)

// Snapshot is a read-only copy of the session state for templates.
type Snapshot struct {
	Mode      Mode
	Columns   []string
	Fields    cards.FieldSelection
	Term      string
	Scope     string
	RowCount  int
	Matches   int
	Persisted bool
}

// Controller is the single owner of session state.
type Controller struct {
	store    *store.Store
	renderer *render.Renderer
	debounce *Debouncer

	mu        sync.Mutex
	dataset   cards.Dataset
	fields    cards.FieldSelection
	term      string
	scope     string
	matches   []cards.RowRecord
	mode      Mode
	persisted bool
}

// NewController wires the session over its collaborators.
func NewController(st *store.Store, renderer *render.Renderer, debounce time.Duration) *Controller {
	return &Controller{
		store:    st,
		renderer: renderer,
		debounce: NewDebouncer(debounce),
		mode:     ModeEmpty,
		scope:    cards.ScopeAll,
	}
}

// Restore loads persisted state on startup. An absent or expired record
// leaves the session empty; a present one goes straight to display mode.
func (c *Controller) Restore(ctx context.Context) error {
	record, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if record == nil {
		log.Printf("[Restore] No persisted state, starting fresh")
		return nil
	}

	c.mu.Lock()
	c.dataset = record.Dataset
	c.fields = record.Fields
	c.term = ""
	c.scope = cards.ScopeAll
	c.mode = ModeDisplaying
	c.persisted = true
	c.mu.Unlock()

	log.Printf("[Restore] Restored %d rows, %d fields", record.Dataset.RowCount(), len(record.Fields))
	c.applyFilter()
	return nil
}

// ImportFile replaces the session's dataset with the decoded file contents
// and moves to column selection. Any pending debounce and in-flight render
// generation are invalidated; previous persisted state stays untouched until
// the next confirmed selection overwrites it.
func (c *Controller) ImportFile(src io.Reader, filename string) (cards.Dataset, error) {
	dataset, err := importer.ImportFile(src, filename)
	if err != nil {
		return cards.Dataset{}, err
	}

	c.debounce.Cancel()
	c.renderer.Cancel()

	c.mu.Lock()
	c.dataset = dataset
	c.fields = nil
	c.term = ""
	c.scope = cards.ScopeAll
	c.matches = nil
	c.mode = ModeSelecting
	c.persisted = false
	c.mu.Unlock()

	return dataset, nil
}

// ProposeColumns returns the candidate column list for the selection screen.
func (c *Controller) ProposeColumns() []string {
	c.mu.Lock()
	dataset := c.dataset
	c.mu.Unlock()
	return selection.ProposeColumns(dataset)
}

// ConfirmSelection validates the chosen columns, persists dataset and
// selection together and transitions to display mode. A storage failure is
// returned for the UI to surface, but the in-memory session still degrades
// gracefully to display mode for this session only.
func (c *Controller) ConfirmSelection(ctx context.Context, chosen []string) error {
	c.mu.Lock()
	dataset := c.dataset
	c.mu.Unlock()

	fields, err := selection.ConfirmSelection(dataset, chosen)
	if err != nil {
		return err
	}

	saveErr := c.store.Save(ctx, dataset, fields)

	c.mu.Lock()
	c.fields = fields
	c.term = ""
	c.scope = cards.ScopeAll
	c.mode = ModeDisplaying
	c.persisted = saveErr == nil
	c.mu.Unlock()

	c.applyFilter()

	if saveErr != nil {
		log.Printf("[ConfirmSelection] Save failed, continuing in-memory only: %v", saveErr)
		return saveErr
	}
	return nil
}

// Search schedules a debounced filter pass for term.
func (c *Controller) Search(term string) {
	c.debounce.Trigger(func() {
		c.SearchNow(term)
	})
}

// SearchNow applies term immediately, bypassing the debounce.
func (c *Controller) SearchNow(term string) {
	c.mu.Lock()
	c.term = term
	c.mu.Unlock()
	c.applyFilter()
}

// SetScope switches between "all" and a single named field and refilters.
// Only fields of the confirmed selection are valid scopes; anything else
// falls back to "all".
func (c *Controller) SetScope(scope string) {
	c.mu.Lock()
	if scope != cards.ScopeAll && !c.fields.Contains(scope) {
		if scope != "" {
			log.Printf("[SetScope] Ignoring scope %q outside the confirmed selection", scope)
		}
		scope = cards.ScopeAll
	}
	c.scope = scope
	c.mu.Unlock()
	c.applyFilter()
}

// Refresh re-runs the current filter and render, e.g. when a page connects.
func (c *Controller) Refresh() {
	c.applyFilter()
}

// LoadMore expands the card list by one page.
func (c *Controller) LoadMore() {
	c.renderer.LoadMore()
}

// Clear purges all persisted tiers and resets the session to empty. Pending
// debounce timers and in-flight render generations are invalidated.
func (c *Controller) Clear(ctx context.Context) error {
	c.debounce.Cancel()
	c.renderer.Cancel()

	err := c.store.Clear(ctx)

	c.mu.Lock()
	c.dataset = cards.Dataset{}
	c.fields = nil
	c.term = ""
	c.scope = cards.ScopeAll
	c.matches = nil
	c.mode = ModeEmpty
	c.persisted = false
	c.mu.Unlock()

	return err
}

// Snapshot returns a copy of the current state for rendering templates.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:      c.mode,
		Columns:   append([]string(nil), c.dataset.Columns...),
		Fields:    append(cards.FieldSelection(nil), c.fields...),
		Term:      c.term,
		Scope:     c.scope,
		RowCount:  c.dataset.RowCount(),
		Matches:   len(c.matches),
		Persisted: c.persisted,
	}
}

// Dataset returns the current dataset.
func (c *Controller) Dataset() cards.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// applyFilter recomputes the match sequence for the current term and scope
// and hands it to the renderer, which resets pagination to the first page.
func (c *Controller) applyFilter() {
	c.mu.Lock()
	if c.mode != ModeDisplaying {
		c.mu.Unlock()
		return
	}
	matches := search.Filter(c.dataset, c.fields, c.term, c.scope)
	c.matches = matches
	fields := c.fields
	c.mu.Unlock()

	c.renderer.Render(matches, fields)
}
