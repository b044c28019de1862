package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
)

// DashboardHandler serves the main page.
type DashboardHandler struct {
	deps     Dependencies
	renderer ChartRenderer
	cookie   cookieSettings
	log      logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies, renderer ChartRenderer, cookie cookieSettings, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{deps: deps, renderer: renderer, cookie: cookie, log: log}
}

type chartPanel struct {
	Heading string
	SVG     template.HTML
	PNGURL  string
}

type dashboardPage struct {
	view.Model
	Username       string
	FiltersHeading string
	SearchLabel    string
	ChartsHeading  string
	Charts         []chartPanel
}

// HandleDashboard handles GET / requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	sess, ok := authenticated(r, h.deps, h.cookie)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	m := h.deps.BuildView(r.Context(), selectionFromQuery(r.URL.Query()))
	page := dashboardPage{
		Model:          m,
		Username:       sess.Username,
		FiltersHeading: view.FiltersHeading,
		SearchLabel:    view.SearchLabel,
		ChartsHeading:  view.ChartsHeading,
	}

	for i, sec := range m.Sections {
		svg, err := h.renderer.SVG(sec.Figure, "chart-"+strconv.Itoa(i))
		if err != nil {
			h.log.Error(r.Context(), "render chart", logger.String("assessment", sec.Assessment), logger.Error(err))
		}
		q := selectionQuery(m.Selection)
		q.Set(paramAssessment, sec.Assessment)
		page.Charts = append(page.Charts, chartPanel{
			Heading: sec.Heading,
			SVG:     svg,
			PNGURL:  "/chart.png?" + q.Encode(),
		})
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		h.log.Error(r.Context(), "render dashboard", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("api.dashboard", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
