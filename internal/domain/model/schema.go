package model

import "fmt"

// Schema maps the logical fields of an exam-performance record to column names.
type Schema struct {
	Entity           string // regional unit (Crede)
	Network          string // rede
	Stage            string // etapa
	Subject          string // disciplina
	SkillCode        string
	SkillDescription string
	Rate             string // taxa de acerto, 0-100
	Assessment       string // avaliação
}

// DefaultSchema returns the column names used by the AvalieCE exports.
func DefaultSchema() Schema {
	return Schema{
		Entity:           "NM_ENTIDADE",
		Network:          "VL_FILTRO_REDE",
		Stage:            "VL_FILTRO_ETAPA",
		Subject:          "VL_FILTRO_DISCIPLINA",
		SkillCode:        "CD_HABILIDADE",
		SkillDescription: "DC_HABILIDADE",
		Rate:             "TX_ACERTO",
		Assessment:       "DC_FILTRO_AVALIACAO",
	}
}

// Required lists the columns a dataset must carry to be browsable.
func (s Schema) Required() []string {
	return []string{s.Entity, s.Network, s.Stage, s.Subject, s.Assessment}
}

// Display lists the result table columns in display order.
func (s Schema) Display() []string {
	return []string{s.SkillCode, s.SkillDescription, s.Rate, s.Assessment}
}

// Validate reports the first required column t lacks.
func (s Schema) Validate(t *Table) error {
	for _, col := range s.Required() {
		if !t.Has(col) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}
