package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cardstock/internal/config"
	"cardstock/internal/render"
	"cardstock/internal/session"
	"cardstock/internal/store"
)

func newTestApp(t *testing.T) (*App, *session.Controller) {
	t.Helper()

	templates, err := ParseTemplates()
	if err != nil {
		t.Fatalf("ParseTemplates failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.AssetVersion = "test"
	cfg.Paths.DataDir = t.TempDir()
	cfg.View.PageSize = 30
	cfg.View.ChunkSize = 10
	cfg.View.Debounce = 10 * time.Millisecond

	hub := NewHub()
	frame := NewSSEFrame(hub, templates)
	renderer := render.New(frame, render.Options{PageSize: cfg.View.PageSize, ChunkSize: cfg.View.ChunkSize})
	st := store.New(store.NewMemoryBulkTier(), store.NewMemoryMetaTier())
	controller := session.NewController(st, renderer, cfg.View.Debounce)
	archive := store.NewArchive(filepath.Join(cfg.Paths.DataDir, "uploads"))

	return NewApp(cfg, controller, hub, archive, templates), controller
}

func uploadCSV(t *testing.T, app *App, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("dataset", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("Writing upload body failed: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, app *App, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Encoding request failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestParseTemplates(t *testing.T) {
	templates, err := ParseTemplates()
	if err != nil {
		t.Fatalf("ParseTemplates failed: %v", err)
	}
	for _, name := range []string{"index", "help", "card"} {
		if templates.Lookup(name) == nil {
			t.Errorf("Expected template %q to be defined", name)
		}
	}
}

func TestCardTemplateEscapesValues(t *testing.T) {
	templates, err := ParseTemplates()
	if err != nil {
		t.Fatalf("ParseTemplates failed: %v", err)
	}

	card := render.Card{
		Index: 0,
		Lines: []render.Line{{Field: "Name", Value: `<script>alert("x")</script>`}},
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "card", card); err != nil {
		t.Fatalf("Card template execution failed: %v", err)
	}

	html := buf.String()
	if strings.Contains(html, "<script>") {
		t.Error("Cell values must be escaped in card markup")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("Expected escaped markup, got: %s", html)
	}
}

func TestSSEFrameBroadcastsRenderedCards(t *testing.T) {
	templates, err := ParseTemplates()
	if err != nil {
		t.Fatalf("ParseTemplates failed: %v", err)
	}

	hub := NewHub()
	client := sseClient{id: "test", channel: make(chan ViewEvent, 32)}
	hub.register <- client

	frame := NewSSEFrame(hub, templates)
	frame.AppendCards([]render.Card{
		{Index: 0, Lines: []render.Line{{Field: "Name", Value: "Alice"}}},
	})

	select {
	case event := <-client.channel:
		if event.Type != "cards" {
			t.Errorf("Expected a cards event, got %q", event.Type)
		}
		if !strings.Contains(event.HTML, "Alice") {
			t.Errorf("Expected rendered card markup, got: %s", event.HTML)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No event arrived on the client channel")
	}
}

func TestUploadConfirmStateFlow(t *testing.T) {
	app, controller := newTestApp(t)

	rec := uploadCSV(t, app, "roster.csv", "Name,Reg\nAlice,A100\nBob,B200\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("Upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		Columns  []string `json:"columns"`
		RowCount int      `json:"row_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("Decoding upload response failed: %v", err)
	}
	if uploaded.RowCount != 2 || len(uploaded.Columns) != 2 {
		t.Errorf("Expected 2 rows and 2 columns, got %d/%d", uploaded.RowCount, len(uploaded.Columns))
	}

	rec = postJSON(t, app, "/api/columns/confirm", map[string]interface{}{"columns": []string{"Name"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirmed struct {
		OK        bool `json:"ok"`
		Persisted bool `json:"persisted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("Decoding confirm response failed: %v", err)
	}
	if !confirmed.OK || !confirmed.Persisted {
		t.Errorf("Expected a persisted confirmation, got %+v", confirmed)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	stateRec := httptest.NewRecorder()
	app.Router().ServeHTTP(stateRec, req)
	if stateRec.Code != http.StatusOK {
		t.Fatalf("State: expected 200, got %d", stateRec.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(stateRec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Decoding state failed: %v", err)
	}
	if snap.Mode != session.ModeDisplaying {
		t.Errorf("Expected mode %q, got %q", session.ModeDisplaying, snap.Mode)
	}
	if snap.RowCount != 2 {
		t.Errorf("Expected 2 rows in state, got %d", snap.RowCount)
	}
	if !controller.Snapshot().Persisted {
		t.Error("Expected the controller to report the pair persisted")
	}
}

func TestUploadRejectsUnknownFormat(t *testing.T) {
	app, _ := newTestApp(t)

	rec := uploadCSV(t, app, "roster.txt", "whatever")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for an unrecognized format, got %d", rec.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decoding error response failed: %v", err)
	}
	if resp.Code != "PARSE_ERROR" {
		t.Errorf("Expected PARSE_ERROR, got %q", resp.Code)
	}
}

func TestUploadRejectsEmptyDataset(t *testing.T) {
	app, _ := newTestApp(t)

	rec := uploadCSV(t, app, "empty.csv", "Name,Reg\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for a header-only file, got %d", rec.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decoding error response failed: %v", err)
	}
	if resp.Code != "EMPTY_FILE" {
		t.Errorf("Expected EMPTY_FILE, got %q", resp.Code)
	}
}

func TestConfirmWithoutColumnsFails(t *testing.T) {
	app, _ := newTestApp(t)

	rec := uploadCSV(t, app, "roster.csv", "Name,Reg\nAlice,A100\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("Upload failed: %d", rec.Code)
	}

	rec = postJSON(t, app, "/api/columns/confirm", map[string]interface{}{"columns": []string{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for an empty selection, got %d", rec.Code)
	}
}

func TestClearEndpointResetsSession(t *testing.T) {
	app, controller := newTestApp(t)

	rec := uploadCSV(t, app, "roster.csv", "Name,Reg\nAlice,A100\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("Upload failed: %d", rec.Code)
	}
	rec = postJSON(t, app, "/api/columns/confirm", map[string]interface{}{"columns": []string{"Name"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d", rec.Code)
	}

	rec = postJSON(t, app, "/api/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Clear: expected 200, got %d", rec.Code)
	}
	if got := controller.Snapshot().Mode; got != session.ModeEmpty {
		t.Errorf("Expected an empty session after clear, got %q", got)
	}
}

func TestIndexRendersForEachMode(t *testing.T) {
	app, _ := newTestApp(t)

	// Empty session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Index (empty): expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `data-mode="empty"`) {
		t.Error("Expected the empty mode marker")
	}

	// Selection screen after an upload.
	if got := uploadCSV(t, app, "roster.csv", "Name,Score\nAlice,10\nBob,20\n"); got.Code != http.StatusOK {
		t.Fatalf("Upload failed: %d", got.Code)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Index (selecting): expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-mode="selecting"`) {
		t.Error("Expected the selecting mode marker")
	}
	if !strings.Contains(body, "Name") || !strings.Contains(body, "Score") {
		t.Error("Expected proposed columns on the selection screen")
	}
}

func TestHelpPageRendersMarkdown(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/help", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Help: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1") {
		t.Error("Expected rendered markdown headings on the help page")
	}
}

func TestVersionedStaticAssets(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/static/test/app.js", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Static asset: expected 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Expected an immutable cache policy, got %q", cc)
	}

	// A stale version tag misses the route.
	req = httptest.NewRequest(http.MethodGet, "/static/old/app.js", nil)
	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Error("Expected a stale asset version to miss")
	}
}
