package dataset

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/okian/avaliece/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Source reads a complete table.
type Source interface {
	Read(ctx context.Context) (*model.Table, error)
}

// SourceFor picks a reader by file extension: .db, .sqlite and .sqlite3 are
// SQLite databases, everything else is delimited text.
func SourceFor(path string, delimiter rune, table string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return &SQLiteSource{Path: path, Table: table}
	default:
		return &CSVSource{Path: path, Delimiter: delimiter}
	}
}

// CSVSource reads a delimited UTF-8 file with a header row.
type CSVSource struct {
	Path      string
	Delimiter rune
}

const utf8BOM = "\ufeff"

func (s *CSVSource) Read(ctx context.Context) (*model.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	if s.Delimiter != 0 {
		r.Comma = s.Delimiter
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue // blank line
		}
		rows = append(rows, rec)
	}
	return model.NewTable(header, rows), nil
}

// SQLiteSource reads every row of one table from a SQLite file.
type SQLiteSource struct {
	Path  string
	Table string
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *SQLiteSource) Read(ctx context.Context) (*model.Table, error) {
	if !identifier.MatchString(s.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, s.Table)
	}
	if _, err := os.Stat(s.Path); err != nil {
		return nil, err
	}

	dsn := (&url.URL{Scheme: "file", Path: s.Path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	rs, err := db.QueryContext(ctx, `SELECT * FROM "`+s.Table+`"`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var rows [][]string
	for rs.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return model.NewTable(cols, rows), nil
}
