package server

import (
	"net/http"
)

// Handler serves the static trees selected by a Translator.
type Handler struct {
	translator *Translator
}

// NewHandler creates a static file handler.
func NewHandler(t *Translator) *Handler {
	return &Handler{translator: t}
}

// ServeHTTP serves GET and HEAD. Directories resolve to their index.html.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.ServeFile(w, r, h.translator.Translate(r.URL.Path))
}
