// Package session tracks which browser sessions have passed the login form.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/avaliece/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

// State of a session.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session is what the store knows about one cookie.
type Session struct {
	ID        string
	Username  string
	State     State
	CreatedAt time.Time
}

// Authenticated reports whether the session may see the dashboard.
func (s Session) Authenticated() bool { return s.State == LoggedIn }

// Store keeps authenticated sessions in memory. An entry expires after TTL
// without requests.
type Store struct {
	items *gocache.Cache
	ttl   time.Duration
}

// Option applies a configuration option to the Store.
type Option func(*storeOptions)

type storeOptions struct {
	ttl     time.Duration
	cleanup time.Duration
}

// WithTTL sets the idle lifetime of a session.
func WithTTL(ttl time.Duration) Option {
	return func(o *storeOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired sessions are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.cleanup = d
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	o := storeOptions{ttl: 8 * time.Hour, cleanup: 10 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{items: gocache.New(o.ttl, o.cleanup), ttl: o.ttl}
	s.items.OnEvicted(func(string, any) {
		metrics.UpdateActiveSessions(s.items.ItemCount())
	})
	return s
}

// Login moves a new session to LoggedIn and returns it.
func (s *Store) Login(_ context.Context, username string) Session {
	sess := Session{
		ID:        uuid.NewString(),
		Username:  username,
		State:     LoggedIn,
		CreatedAt: time.Now(),
	}
	s.items.Set(sess.ID, sess, s.ttl)
	metrics.UpdateActiveSessions(s.items.ItemCount())
	return sess
}

// Get returns the session for id, or a LoggedOut session when id is unknown
// or expired. A hit extends the idle lifetime.
func (s *Store) Get(_ context.Context, id string) Session {
	if id == "" {
		return Session{State: LoggedOut}
	}
	v, ok := s.items.Get(id)
	if !ok {
		return Session{ID: id, State: LoggedOut}
	}
	sess := v.(Session)
	s.items.Set(id, sess, s.ttl)
	return sess
}

// Logout moves the session back to LoggedOut. Unknown ids are ignored.
func (s *Store) Logout(_ context.Context, id string) {
	if id == "" {
		return
	}
	// Delete fires OnEvicted, which refreshes the gauge.
	s.items.Delete(id)
	metrics.RecordLogout()
}

// Count returns the number of live sessions.
func (s *Store) Count() int { return s.items.ItemCount() }

// TTL returns the idle lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }
