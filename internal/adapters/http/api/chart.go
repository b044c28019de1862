package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
)

// ChartHandler serves one assessment's chart as a PNG image.
type ChartHandler struct {
	deps     Dependencies
	renderer ChartRenderer
	cookie   cookieSettings
	log      logger.Logger
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies, renderer ChartRenderer, cookie cookieSettings, log logger.Logger) *ChartHandler {
	return &ChartHandler{deps: deps, renderer: renderer, cookie: cookie, log: log}
}

// HandleChartPNG handles GET /chart.png requests.
func (h *ChartHandler) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if _, ok := authenticated(r, h.deps, h.cookie); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	q := r.URL.Query()
	assessment := q.Get(paramAssessment)
	if assessment == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing avaliacao")))
		return
	}

	m := h.deps.BuildView(r.Context(), selectionFromQuery(q))
	if m.Outcome == view.OutcomeError || m.Outcome == view.OutcomeNotFound {
		writeError(w, http.StatusServiceUnavailable, "view_error", WrapKind(op, ErrView, errors.New(m.Error)))
		return
	}
	sec, ok := m.Section(assessment)
	if !ok || sec.Figure.Empty() {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, fmt.Errorf("no chart for %q", assessment)))
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.PNG(&buf, sec.Figure); err != nil {
		h.log.Error(r.Context(), "render png", logger.String("assessment", assessment), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="grafico.png"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
