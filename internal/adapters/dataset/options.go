// Package dataset reads the exam-performance table from disk and caches it
// until the file changes.
package dataset

import (
	"github.com/okian/avaliece/internal/domain/model"
	"github.com/okian/avaliece/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithDelimiter sets the CSV field separator.
func WithDelimiter(d rune) Option {
	return func(l *Loader) {
		if d != 0 {
			l.delimiter = d
		}
	}
}

// WithTable sets the table read from SQLite files.
func WithTable(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.table = name
		}
	}
}

// WithSchema sets the columns checked after every load.
func WithSchema(s model.Schema) Option {
	return func(l *Loader) {
		l.schema = s
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
