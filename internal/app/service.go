// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/avaliece/internal/adapters/dataset"
	"github.com/okian/avaliece/internal/adapters/session"
	"github.com/okian/avaliece/internal/domain/auth"
	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/model"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
	"github.com/okian/avaliece/pkg/metrics"
)

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader   *dataset.Loader
	watcher  *dataset.Watcher
	sessions *session.Store
	verifier auth.Verifier
	builder  *view.Builder

	// Configuration
	datasetPath string
	delimiter   rune
	table       string
	watch       bool
	schema      model.Schema
	locale      string
	sessionTTL  time.Duration

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataset sets the dataset path, CSV delimiter and SQLite table.
func WithDataset(path string, delimiter rune, table string) Option {
	return func(s *Service) {
		s.datasetPath = path
		if delimiter != 0 {
			s.delimiter = delimiter
		}
		if table != "" {
			s.table = table
		}
	}
}

// WithWatch enables cache invalidation on file system events.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithSchema sets the dataset column mapping.
func WithSchema(schema model.Schema) Option {
	return func(s *Service) {
		s.schema = schema
	}
}

// WithLocale sets the collation locale for dropdown options.
func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// WithVerifier replaces the credential check.
func WithVerifier(v auth.Verifier) Option {
	return func(s *Service) {
		if v != nil {
			s.verifier = v
		}
	}
}

// WithSessionTTL sets the idle lifetime of a login.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datasetPath: "dados.csv",
		delimiter:   ',',
		table:       "dados",
		schema:      model.DefaultSchema(),
		locale:      "pt-BR",
		sessionTTL:  8 * time.Hour,
		verifier:    auth.NewStatic("Formace", "Formace"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.loader = dataset.NewLoader(s.datasetPath,
		dataset.WithDelimiter(s.delimiter),
		dataset.WithTable(s.table),
		dataset.WithSchema(s.schema),
		dataset.WithLogger(s.logger),
	)
	s.sessions = session.NewStore(session.WithTTL(s.sessionTTL))
	s.builder = view.New(s.schema, filter.New(s.schema, filter.WithLocale(s.locale)))

	return s
}

// Start warms the dataset cache and starts the file watcher.
// A missing or broken dataset does not fail Start; the page reports it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting dashboard service...", logger.String("dataset", s.datasetPath))

	if _, err := s.loader.Load(ctx); err != nil {
		s.logger.Warn(ctx, "dataset not available yet", logger.Error(err))
	}

	if s.watch {
		s.watcher = dataset.NewWatcher(s.loader, s.logger.Named("watcher"))
		if err := s.watcher.Start(ctx); err != nil {
			// the cache still revalidates on mtime, so keep serving
			s.logger.Warn(ctx, "dataset watcher disabled", logger.Error(err))
			s.watcher = nil
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.Bool("watch", s.watcher != nil),
		logger.Duration("sessionTTL", s.sessionTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Verify checks a username/password pair.
func (s *Service) Verify(ctx context.Context, username, password string) bool {
	return s.verifier.Verify(ctx, username, password)
}

// Login opens an authenticated session.
func (s *Service) Login(ctx context.Context, username string) session.Session {
	return s.sessions.Login(ctx, username)
}

// Logout closes the session.
func (s *Service) Logout(ctx context.Context, id string) {
	s.sessions.Logout(ctx, id)
}

// Session returns the session for id.
func (s *Service) Session(ctx context.Context, id string) session.Session {
	return s.sessions.Get(ctx, id)
}

// Load returns the dataset through the cache.
func (s *Service) Load(ctx context.Context) (*model.Table, error) {
	return s.loader.Load(ctx)
}

// BuildView loads the dataset and runs the dashboard pipeline for sel.
func (s *Service) BuildView(ctx context.Context, sel filter.Selection) view.Model {
	t, err := s.loader.Load(ctx)
	if err != nil && s.logger != nil {
		s.logger.Warn(ctx, "dataset load failed", logger.Error(err))
	}
	m := s.builder.Build(view.Input{
		Table:     t,
		LoadErr:   err,
		Source:    s.datasetPath,
		Selection: sel,
	})
	metrics.RecordViewBuild(m.Outcome, m.Total)
	return m
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"dataset":        s.datasetPath,
		"datasetCached":  s.loader.Cached(),
		"watching":       s.watcher != nil,
		"activeSessions": s.sessions.Count(),
	}
	if s.started {
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
	}

	metrics.UpdateActiveSessions(s.sessions.Count())
	return stats
}
