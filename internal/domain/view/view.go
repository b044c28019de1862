// Package view assembles everything the dashboard page shows from a dataset
// and a filter selection. Build has no side effects; the HTTP layer and the
// report command both render its Model.
package view

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/okian/avaliece/internal/domain/aggregate"
	"github.com/okian/avaliece/internal/domain/chart"
	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/model"
)

// Page copy.
const (
	PageTitle      = "📋 Sistema de Consulta - AvalieCE 2024"
	FiltersHeading = "🎯 Filtros"
	SearchLabel    = "🔍 Buscar por palavra-chave (habilidade, código etc):"
	ChartsHeading  = "📊 Gráficos de Acerto por Habilidade (por Avaliação)"
	EmptyMessage   = "Nenhum registro encontrado."
	FeedbackTitle  = "💬 Sua opinião é importante!"
	FeedbackBody   = "Este sistema está em constante melhoria. Se você encontrou algum problema ou tem sugestões, " +
		"**por favor, compartilhe com a equipe responsável.**"
)

// Outcomes reported in Model.Outcome.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Input is everything Build depends on.
type Input struct {
	Table     *model.Table
	LoadErr   error
	Source    string // dataset path, only its base name is shown
	Selection filter.Selection
}

// Section is one collapsible block per assessment.
type Section struct {
	Assessment string            `json:"assessment"`
	Heading    string            `json:"heading"`
	Groups     []aggregate.Group `json:"groups"`
	Figure     chart.Figure      `json:"figure"`
}

// Feedback is the static closing banner.
type Feedback struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Model is the complete page state.
type Model struct {
	Title     string            `json:"title"`
	Outcome   string            `json:"outcome"`
	Selection filter.Selection  `json:"selection"`
	Dropdowns []filter.Dropdown `json:"dropdowns"`
	Columns   []string          `json:"columns,omitempty"`
	Rows      [][]string        `json:"rows,omitempty"`
	Total     int               `json:"total"`
	Success   string            `json:"success,omitempty"`
	Warning   string            `json:"warning,omitempty"`
	Error     string            `json:"error,omitempty"`
	Sections  []Section         `json:"sections,omitempty"`
	Feedback  *Feedback         `json:"feedback,omitempty"`
}

// Builder turns inputs into models.
type Builder struct {
	schema   model.Schema
	pipeline *filter.Pipeline
}

// New returns a Builder for schema using pipeline for filtering.
func New(schema model.Schema, pipeline *filter.Pipeline) *Builder {
	return &Builder{schema: schema, pipeline: pipeline}
}

// Build computes the page. A load error or a panic while building turns into
// an error banner; the page shell is always returned.
func (b *Builder) Build(in Input) (m Model) {
	m = Model{Title: PageTitle, Selection: in.Selection}

	defer func() {
		if r := recover(); r != nil {
			m = Model{Title: PageTitle, Selection: in.Selection, Outcome: OutcomeError, Error: ErrorMessage(fmt.Errorf("%v", r), in.Source)}
		}
	}()

	if in.LoadErr != nil {
		m.Error = ErrorMessage(in.LoadErr, in.Source)
		m.Outcome = OutcomeError
		if IsNotFound(in.LoadErr) {
			m.Outcome = OutcomeNotFound
		}
		return m
	}
	if in.Table == nil {
		m.Error = ErrorMessage(fs.ErrNotExist, in.Source)
		m.Outcome = OutcomeNotFound
		return m
	}

	res := b.pipeline.Apply(in.Table, in.Selection)
	m.Selection = res.Effective
	m.Dropdowns = res.Dropdowns
	m.Feedback = &Feedback{Title: FeedbackTitle, Body: FeedbackBody}

	if res.Empty() {
		m.Outcome = OutcomeEmpty
		m.Warning = EmptyMessage
		return m
	}

	m.Outcome = OutcomeOK
	m.Columns, m.Rows = res.Table.Project(b.schema.Display())
	m.Total = res.Table.Len()
	m.Success = fmt.Sprintf("✅ Total de registros: %d", m.Total)
	m.Sections = b.sections(res.Table)
	return m
}

func (b *Builder) sections(t *model.Table) []Section {
	var out []Section
	for _, part := range aggregate.ByAssessment(t, b.schema) {
		groups, err := aggregate.MeanBySkill(part.Table, b.schema)
		if err != nil {
			// skill columns absent: the table is still shown, charts are not
			return nil
		}
		out = append(out, Section{
			Assessment: part.Name,
			Heading:    "📝 " + part.Name,
			Groups:     groups,
			Figure:     chart.Build(groups),
		})
	}
	return out
}

// Section returns the section for assessment, if the filtered data has one.
func (m Model) Section(assessment string) (Section, bool) {
	for _, s := range m.Sections {
		if s.Assessment == assessment {
			return s, true
		}
	}
	return Section{}, false
}

// IsNotFound reports whether err means the dataset file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// ErrorMessage maps a load or processing fault to the banner text.
func ErrorMessage(err error, source string) string {
	if IsNotFound(err) {
		name := filepath.Base(source)
		if source == "" {
			name = "dados.csv"
		}
		return fmt.Sprintf("❌ Arquivo '%s' não encontrado.", name)
	}
	return fmt.Sprintf("❌ Erro: %v", err)
}
