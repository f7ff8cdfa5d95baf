package ui

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"cardstock/internal/errors"
	"cardstock/internal/profile"
)

// indexData feeds the index template.
type indexData struct {
	Snapshot     interface{}
	Columns      []string
	Profiles     []profile.ColumnSummary
	AssetVersion string
}

// handleIndex renders the single-page UI in whatever mode the session is in.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot := a.controller.Snapshot()

	data := indexData{
		Snapshot:     snapshot,
		AssetVersion: a.cfg.Server.AssetVersion,
	}

	if snapshot.Mode == "selecting" {
		data.Columns = a.controller.ProposeColumns()
		profiles, err := profile.Summarize(r.Context(), a.controller.Dataset())
		if err != nil {
			log.Printf("[handleIndex] Column profiling failed: %v", err)
		} else {
			data.Profiles = profiles
		}
	}

	if err := a.templates.ExecuteTemplate(w, "index", data); err != nil {
		log.Printf("[handleIndex] FAILED - Template execution: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleHelp renders the embedded help markdown to HTML.
func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	source, err := embeddedFiles.ReadFile("templates/help.md")
	if err != nil {
		log.Printf("[handleHelp] FAILED - Help source missing: %v", err)
		http.Error(w, "help unavailable", http.StatusInternalServerError)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML(source, p, renderer)

	data := struct {
		Body         template.HTML
		AssetVersion string
	}{
		Body:         template.HTML(rendered),
		AssetVersion: a.cfg.Server.AssetVersion,
	}
	if err := a.templates.ExecuteTemplate(w, "help", data); err != nil {
		log.Printf("[handleHelp] FAILED - Template execution: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleUpload accepts a spreadsheet file, archives the source and imports it.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	log.Printf("[handleUpload] Starting file upload")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("dataset")
	if err != nil {
		log.Printf("[handleUpload] FAILED - No file uploaded: %v", err)
		respondError(w, http.StatusBadRequest, errors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	// Keep a copy of the raw source, then import from the archived copy.
	archivedPath, err := a.archive.Store(header.Filename, file)
	if err != nil {
		log.Printf("[handleUpload] FAILED - Archive write: %v", err)
		respondError(w, http.StatusInternalServerError, errors.WriteRejected("failed to store uploaded file", err))
		return
	}

	source, err := os.Open(archivedPath)
	if err != nil {
		log.Printf("[handleUpload] FAILED - Reopen archived file: %v", err)
		respondError(w, http.StatusInternalServerError, errors.InternalError("failed to read uploaded file"))
		return
	}
	defer source.Close()

	dataset, err := a.controller.ImportFile(source, header.Filename)
	if err != nil {
		log.Printf("[handleUpload] FAILED - Import: %v", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"columns":   dataset.Columns,
		"row_count": dataset.RowCount(),
	})
}

// handleConfirmColumns validates the chosen columns and persists the session.
// A storage failure degrades to "this session only" and is surfaced as a
// warning rather than rolling the in-memory state back.
func (a *App) handleConfirmColumns(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Columns []string `json:"columns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.InvalidInput("invalid request format"))
		return
	}

	err := a.controller.ConfirmSelection(r.Context(), req.Columns)
	if err != nil {
		if errors.IsStorageFailure(err) {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"ok":        true,
				"persisted": false,
				"warning":   "saving failed; your data is available for this session only",
			})
			return
		}
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"persisted": true,
	})
}

// handleState returns the session snapshot.
func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.controller.Snapshot())
}

// handleSearch schedules a debounced filter pass.
func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.InvalidInput("invalid request format"))
		return
	}

	a.controller.Search(req.Term)
	w.WriteHeader(http.StatusAccepted)
}

// handleScope switches the search scope and refilters immediately.
func (a *App) handleScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.InvalidInput("invalid request format"))
		return
	}

	a.controller.SetScope(req.Scope)
	w.WriteHeader(http.StatusAccepted)
}

// handleLoadMore expands the card list by one page.
func (a *App) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	a.controller.LoadMore()
	w.WriteHeader(http.StatusAccepted)
}

// handleRefresh re-renders the current view, used when a page (re)connects.
func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a.controller.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

// handleClear purges persisted state and resets the session.
func (a *App) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := a.controller.Clear(r.Context()); err != nil {
		log.Printf("[handleClear] FAILED - %v", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[respondJSON] FAILED - %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
