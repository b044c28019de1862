// Package probe drives a running dashboard over HTTP and checks that the
// filter cascade behaves: every region slice is a subset of the full view
// and each narrowed dropdown only offers values the wider one offered.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL  string        // Base URL of the dashboard
	Username string        // Login user
	Password string        // Login password
	Workers  int           // Concurrent region requests
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every region result
}

// Stats holds probe statistics.
type Stats struct {
	Regions    int
	Checked    int
	Failed     int
	TotalRows  int
	RegionRows int
	Violations []string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// OK reports whether the run found no violations.
func (s *Stats) OK() bool { return s.Failed == 0 && len(s.Violations) == 0 }

// Defaults for flags and zero-valued Config fields.
const (
	DefaultBaseURL = "http://localhost:8501"
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}
