// Package filter implements the cascading dropdown filters and the free-text
// search applied to the dashboard dataset.
package filter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/avaliece/internal/domain/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the option label meaning "no filter".
const All = "Todas"

// Selection holds the user's choices. Empty or All means no filter.
type Selection struct {
	Region  string `json:"crede"`
	Network string `json:"rede"`
	Stage   string `json:"etapa"`
	Subject string `json:"disciplina"`
	Search  string `json:"q"`
}

// Dropdown is one cascading select box.
type Dropdown struct {
	Name     string   `json:"name"`  // query parameter
	Label    string   `json:"label"` // UI label
	Column   string   `json:"column"`
	Options  []string `json:"options"` // All first, then sorted values
	Selected string   `json:"selected"`
	// Reset is set when the requested value vanished from Options.
	Reset bool `json:"reset,omitempty"`
}

// Result is the outcome of running the pipeline.
type Result struct {
	Table     *model.Table
	Dropdowns []Dropdown
	Effective Selection
	Searched  bool
}

// Empty reports the "no records" state.
func (r Result) Empty() bool { return r.Table == nil || r.Table.Empty() }

// Pipeline applies region, network, stage and subject filters in order,
// then the search term.
type Pipeline struct {
	schema model.Schema
	tag    language.Tag
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocale sets the collation language for option lists (BCP 47 tag).
func WithLocale(locale string) Option {
	return func(p *Pipeline) {
		if tag, err := language.Parse(locale); err == nil {
			p.tag = tag
		}
	}
}

// New creates a pipeline for schema.
func New(schema model.Schema, opts ...Option) *Pipeline {
	p := &Pipeline{schema: schema, tag: language.BrazilianPortuguese}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type stage struct {
	name, label, column string
	value               *string
}

// Apply runs the pipeline over t. It never mutates t.
func (p *Pipeline) Apply(t *model.Table, sel Selection) Result {
	eff := sel
	stages := []stage{
		{"crede", "Crede", p.schema.Entity, &eff.Region},
		{"rede", "Rede", p.schema.Network, &eff.Network},
		{"etapa", "Etapa", p.schema.Stage, &eff.Stage},
		{"disciplina", "Disciplina", p.schema.Subject, &eff.Subject},
	}

	cur := t
	res := Result{Dropdowns: make([]Dropdown, 0, len(stages))}
	for _, st := range stages {
		values := p.Options(cur, st.column)
		dd := Dropdown{
			Name:     st.name,
			Label:    st.label,
			Column:   st.column,
			Options:  append([]string{All}, values...),
			Selected: All,
		}

		want := strings.TrimSpace(*st.value)
		if IsAll(want) {
			*st.value = ""
		} else if key, ok := lookup(cur, st.column, values, want); ok {
			dd.Selected = key
			*st.value = key
			cur = cur.Equal(st.column, key)
		} else {
			dd.Reset = true
			*st.value = ""
		}
		res.Dropdowns = append(res.Dropdowns, dd)
	}

	eff.Search = strings.TrimSpace(sel.Search)
	if eff.Search != "" {
		if searched, ok := p.Search(cur, eff.Search); ok {
			cur = searched
			res.Searched = true
		}
	}

	res.Table = cur
	res.Effective = eff
	return res
}

// IsAll reports whether v means "no filter".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

func lookup(t *model.Table, col string, values []string, want string) (string, bool) {
	key := t.KeyOf(col, want)
	for _, v := range values {
		if v == key {
			return v, true
		}
	}
	return "", false
}

// Options returns the sorted distinct non-missing values of col in t.
func (p *Pipeline) Options(t *model.Table, col string) []string {
	if !t.Has(col) {
		return nil
	}
	values := t.Distinct(col)
	if t.Kind(col) == model.Numeric {
		sort.SliceStable(values, func(i, j int) bool {
			a, _ := strconv.ParseFloat(values[i], 64)
			b, _ := strconv.ParseFloat(values[j], 64)
			return a < b
		})
		return values
	}
	collate.New(p.tag).SortStrings(values)
	return values
}

// Search keeps rows whose skill description or skill code contains term,
// ignoring case. It returns false when either column is absent.
func (p *Pipeline) Search(t *model.Table, term string) (*model.Table, bool) {
	if !t.Has(p.schema.SkillDescription) || !t.Has(p.schema.SkillCode) {
		return t, false
	}
	fold := cases.Fold()
	needle := fold.String(term)
	cols := []string{p.schema.SkillDescription, p.schema.SkillCode}
	return t.Where(func(row int) bool {
		for _, col := range cols {
			cell, ok := t.Cell(row, col)
			if ok && strings.Contains(fold.String(cell), needle) {
				return true
			}
		}
		return false
	}), true
}
