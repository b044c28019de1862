// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/okian/avaliece/internal/adapters/session"
	"github.com/okian/avaliece/internal/domain/chart"
	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Verify checks a username/password pair.
	Verify(ctx context.Context, username, password string) bool

	// Session lifecycle.
	Login(ctx context.Context, username string) session.Session
	Logout(ctx context.Context, id string)
	Session(ctx context.Context, id string) session.Session

	// BuildView runs the dashboard pipeline for sel.
	BuildView(ctx context.Context, sel filter.Selection) view.Model
}

// ChartRenderer draws chart figures.
type ChartRenderer interface {
	SVG(fig chart.Figure, id string) (template.HTML, error)
	PNG(w io.Writer, fig chart.Figure) error
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	authHandler      *AuthHandler
	dashboardHandler *DashboardHandler
	viewHandler      *ViewHandler
	chartHandler     *ChartHandler
	log              logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	cookie cookieSettings
	log    logger.Logger
}

// WithCookie sets the session cookie name and Secure flag.
func WithCookie(name string, secure bool) Option {
	return func(o *serverOptions) {
		if name != "" {
			o.cookie.name = name
		}
		o.cookie.secure = secure
	}
}

// WithSessionTTL sets the cookie lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *serverOptions) {
		if ttl > 0 {
			o.cookie.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(log logger.Logger) Option {
	return func(o *serverOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, renderer ChartRenderer, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{cookie: cookieSettings{name: "avaliece_session", ttl: 8 * time.Hour}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("http")
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		authHandler:      NewAuthHandler(deps, o.cookie, o.log),
		dashboardHandler: NewDashboardHandler(deps, renderer, o.cookie, o.log),
		viewHandler:      NewViewHandler(deps, o.cookie),
		chartHandler:     NewChartHandler(deps, renderer, o.cookie, o.log),
		log:              o.log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	wrap := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return RequestIDMiddleware(MetricsMiddleware(RecoverMiddleware(h, s.log), endpoint))
	}

	mux.HandleFunc("/healthz", wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/login", wrap(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/logout", wrap(s.authHandler.HandleLogout, "logout"))
	mux.HandleFunc("/api/view", wrap(s.viewHandler.HandleView, "view"))
	mux.HandleFunc("/chart.png", wrap(s.chartHandler.HandleChartPNG, "chart"))
	mux.HandleFunc("/{$}", wrap(s.dashboardHandler.HandleDashboard, "dashboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// authenticated returns the caller's session when it is logged in.
func authenticated(r *http.Request, deps Dependencies, cookie cookieSettings) (session.Session, bool) {
	sess := deps.Session(r.Context(), cookie.read(r))
	return sess, sess.Authenticated()
}
