package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/okian/avaliece/internal/domain/model"
	"github.com/okian/avaliece/pkg/logger"
	"github.com/okian/avaliece/pkg/metrics"
)

// fileKey identifies one version of the dataset file.
type fileKey struct {
	modTime time.Time
	size    int64
}

// Loader reads the dataset and keeps the last table until the file's
// modification time or size changes, or Invalidate is called.
type Loader struct {
	mu sync.Mutex

	path      string
	delimiter rune
	table     string
	schema    model.Schema
	log       logger.Logger

	cached *model.Table
	key    fileKey
	valid  bool
}

// NewLoader returns a loader for path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		delimiter: ',',
		table:     "dados",
		schema:    model.DefaultSchema(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the configured dataset path.
func (l *Loader) Path() string { return l.path }

// Load returns the dataset, reading it only when the file changed since the
// previous successful load.
func (l *Loader) Load(ctx context.Context) (*model.Table, error) {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start).Microseconds()) / 1000 }

	if l.path == "" {
		metrics.RecordDatasetLoad("not_found", elapsed())
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}

	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordDatasetLoad("not_found", elapsed())
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		metrics.RecordDatasetLoad("error", elapsed())
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if info.IsDir() {
		metrics.RecordDatasetLoad("error", elapsed())
		return nil, fmt.Errorf("%w: %s is a directory", ErrLoad, l.path)
	}
	key := fileKey{modTime: info.ModTime(), size: info.Size()}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.valid && l.key.modTime.Equal(key.modTime) && l.key.size == key.size {
		metrics.RecordDatasetCacheHit()
		return l.cached, nil
	}

	t, err := SourceFor(l.path, l.delimiter, l.table).Read(ctx)
	if err == nil {
		err = l.schema.Validate(t)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordDatasetLoad("not_found", elapsed())
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		metrics.RecordDatasetLoad("error", elapsed())
		l.logger().Error(ctx, "dataset load failed", logger.String("path", l.path), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	l.cached, l.key, l.valid = t, key, true
	metrics.RecordDatasetLoad("ok", elapsed())
	metrics.UpdateDatasetRows(t.Len())
	l.logger().Info(ctx, "dataset loaded",
		logger.String("path", l.path),
		logger.Int("rows", t.Len()),
		logger.Int("columns", len(t.Columns())),
	)
	return t, nil
}

// Invalidate drops the cached table; the next Load reads the file again.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached, l.valid = nil, false
}

// Cached reports whether a table is held in memory.
func (l *Loader) Cached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.valid
}

func (l *Loader) logger() logger.Logger {
	if l.log == nil {
		l.log = logger.Get().Named("dataset")
	}
	return l.log
}
