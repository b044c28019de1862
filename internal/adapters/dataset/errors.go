package dataset

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel kinds for dataset errors.
var (
	// ErrNotFound wraps fs.ErrNotExist so callers outside this package can
	// match it without importing dataset.
	ErrNotFound      = fmt.Errorf("dataset not found: %w", fs.ErrNotExist)
	ErrLoad          = errors.New("dataset load failed")
	ErrInvalidTable  = errors.New("invalid sqlite table name")
	ErrWatcherActive = errors.New("watcher already running")
)
