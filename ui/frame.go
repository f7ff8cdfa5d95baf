package ui

import (
	"bytes"
	"html/template"
	"log"

	"cardstock/internal/render"
)

// SSEFrame is the render.Frame that draws card chunks onto connected browsers
// by broadcasting view events over the SSE hub.
type SSEFrame struct {
	hub      *Hub
	cardTmpl *template.Template
}

// NewSSEFrame creates a frame broadcasting through hub, rendering cards with
// the "card" template.
func NewSSEFrame(hub *Hub, templates *template.Template) *SSEFrame {
	return &SSEFrame{
		hub:      hub,
		cardTmpl: templates.Lookup("card"),
	}
}

// Reset clears the card surface.
func (f *SSEFrame) Reset() {
	f.hub.Broadcast(ViewEvent{Type: "reset"})
}

// AppendCards renders one chunk of cards to markup and broadcasts it.
func (f *SSEFrame) AppendCards(chunk []render.Card) {
	var buf bytes.Buffer
	for _, card := range chunk {
		if err := f.cardTmpl.Execute(&buf, card); err != nil {
			log.Printf("[SSEFrame] FAILED - Card template execution: %v", err)
			return
		}
	}
	f.hub.Broadcast(ViewEvent{Type: "cards", HTML: buf.String()})
}

// SetBusy toggles the rendering indicator.
func (f *SSEFrame) SetBusy(busy bool) {
	f.hub.Broadcast(ViewEvent{Type: "busy", Busy: busy})
}

// ShowEmpty shows the no-matches indicator.
func (f *SSEFrame) ShowEmpty() {
	f.hub.Broadcast(ViewEvent{Type: "empty"})
}

// SetLoadMore toggles the load-more affordance with progress counts.
func (f *SSEFrame) SetLoadMore(visible bool, shown, total int) {
	f.hub.Broadcast(ViewEvent{Type: "loadmore", Visible: visible, Shown: shown, Total: total})
}
