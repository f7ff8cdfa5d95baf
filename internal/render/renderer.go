// Package render converts a filtered row sequence into UI cards, paginated
// and drawn in small chunks so a large match set never blocks interaction.
// Every render run is keyed to a generation token; a newer run supersedes an
// older one and the stale chunk loop drops its remaining output.
package render

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"cardstock/domain/cards"
)

// Default pagination geometry.
const (
	DefaultPageSize  = 30
	DefaultChunkSize = 10
)

// Line is one field/value pair on a card.
type Line struct {
	Field string
	Value string
}

// Card is one rendered unit representing one row's selected fields.
type Card struct {
	Index int // position within the match sequence
	Lines []Line
}

// Frame is the target surface a render run draws onto. Implementations must
// tolerate calls from the renderer's chunk goroutine.
type Frame interface {
	// Reset clears the surface at the start of a run.
	Reset()
	// AppendCards attaches one chunk of cards.
	AppendCards(chunk []Card)
	// SetBusy toggles the in-flight rendering indicator.
	SetBusy(busy bool)
	// ShowEmpty shows the no-matches indicator.
	ShowEmpty()
	// SetLoadMore toggles the load-more affordance with progress counts.
	SetLoadMore(visible bool, shown, total int)
}

// Options tunes the renderer.
type Options struct {
	PageSize  int
	ChunkSize int
	// Yield runs between chunks; it defaults to runtime.Gosched.
	Yield func()
}

// Renderer drives paginated, chunked card rendering onto a Frame.
type Renderer struct {
	frame     Frame
	pageSize  int
	chunkSize int
	yield     func()

	gen    atomic.Uint64
	runMu  sync.Mutex // serializes chunk loops against the frame
	active sync.WaitGroup

	mu      sync.Mutex
	page    int
	matches []cards.RowRecord
	fields  cards.FieldSelection
}

// New creates a renderer drawing onto frame.
func New(frame Frame, opts Options) *Renderer {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Yield == nil {
		opts.Yield = runtime.Gosched
	}
	return &Renderer{
		frame:     frame,
		pageSize:  opts.PageSize,
		chunkSize: opts.ChunkSize,
		yield:     opts.Yield,
	}
}

// Render starts a run over a new match sequence. The pagination cursor resets
// to the first page and any in-flight run is superseded.
func (r *Renderer) Render(matches []cards.RowRecord, fields cards.FieldSelection) {
	r.mu.Lock()
	r.page = 1
	r.matches = matches
	r.fields = fields
	r.mu.Unlock()

	r.start()
}

// LoadMore advances the pagination cursor by one page and re-renders
// cumulatively from the start. It is a no-op when everything is shown.
func (r *Renderer) LoadMore() {
	r.mu.Lock()
	if r.page*r.pageSize >= len(r.matches) {
		r.mu.Unlock()
		return
	}
	r.page++
	r.mu.Unlock()

	r.start()
}

// Cancel invalidates any in-flight run without starting a new one. Used when
// the dataset is replaced or storage is cleared. Once the stale loop has
// released the frame, the busy indicator is cleared so the frame is not left
// mid-run; a successor run started in the meantime owns the frame instead.
func (r *Renderer) Cancel() {
	gen := r.gen.Add(1)

	r.active.Add(1)
	go func() {
		defer r.active.Done()
		r.runMu.Lock()
		defer r.runMu.Unlock()
		if r.gen.Load() != gen {
			return
		}
		r.frame.SetBusy(false)
	}()
}

// Page returns the current pagination cursor.
func (r *Renderer) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

// Wait blocks until every started run has finished or aborted. Test hook and
// shutdown aid; the UI path never needs it.
func (r *Renderer) Wait() {
	r.active.Wait()
}

// start launches the chunk loop for the current state under a fresh
// generation token.
func (r *Renderer) start() {
	gen := r.gen.Add(1)

	r.mu.Lock()
	matches := r.matches
	fields := r.fields
	page := r.page
	r.mu.Unlock()

	r.active.Add(1)
	go r.run(gen, matches, fields, page)
}

// run is the chunk loop. It renders the first page*pageSize matches in
// chunks, yielding between chunks, and drops out as soon as its generation
// token goes stale.
func (r *Renderer) run(gen uint64, matches []cards.RowRecord, fields cards.FieldSelection, page int) {
	defer r.active.Done()

	// Only one chunk loop may touch the frame at a time; a superseded loop
	// exits at its next generation check, so this never blocks for long.
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.gen.Load() != gen {
		return
	}

	r.frame.Reset()
	r.frame.SetBusy(true)

	if len(matches) == 0 {
		r.frame.SetBusy(false)
		r.frame.SetLoadMore(false, 0, 0)
		r.frame.ShowEmpty()
		return
	}

	limit := page * r.pageSize
	if limit > len(matches) {
		limit = len(matches)
	}

	for offset := 0; offset < limit; offset += r.chunkSize {
		if r.gen.Load() != gen {
			log.Printf("[Renderer] Dropping stale chunk loop (generation %d)", gen)
			return
		}

		end := offset + r.chunkSize
		if end > limit {
			end = limit
		}
		r.frame.AppendCards(buildCards(matches[offset:end], fields, offset))

		r.yield()
	}

	if r.gen.Load() != gen {
		log.Printf("[Renderer] Dropping stale chunk loop (generation %d)", gen)
		return
	}

	r.frame.SetLoadMore(len(matches) > limit, limit, len(matches))
	r.frame.SetBusy(false)
}

// buildCards renders one chunk of rows into cards, one line per selected
// field in selection order.
func buildCards(rows []cards.RowRecord, fields cards.FieldSelection, baseIndex int) []Card {
	chunk := make([]Card, 0, len(rows))
	for i, row := range rows {
		lines := make([]Line, 0, len(fields))
		for _, field := range fields {
			lines = append(lines, Line{Field: field, Value: row.Value(field)})
		}
		chunk = append(chunk, Card{Index: baseIndex + i, Lines: lines})
	}
	return chunk
}
