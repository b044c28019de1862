package api

import (
	"net/http"
)

// ViewHandler exposes the dashboard view model as JSON.
type ViewHandler struct {
	deps   Dependencies
	cookie cookieSettings
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps Dependencies, cookie cookieSettings) *ViewHandler {
	return &ViewHandler{deps: deps, cookie: cookie}
}

// HandleView handles GET /api/view requests.
func (h *ViewHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.view"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if _, ok := authenticated(r, h.deps, h.cookie); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}
	m := h.deps.BuildView(r.Context(), selectionFromQuery(r.URL.Query()))
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, m)
}
