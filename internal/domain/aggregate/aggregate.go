// Package aggregate computes the mean correctness rate per skill.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/okian/avaliece/internal/domain/model"
)

// Group is the mean rate of one (skill code, skill description) pair.
type Group struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Mean        float64 `json:"mean"`
	Count       int     `json:"count"`
}

// Assessment is the slice of the filtered table belonging to one assessment.
type Assessment struct {
	Name  string
	Table *model.Table
}

// ByAssessment splits t by the assessment column, in first-appearance order.
// Rows with a missing assessment are left out.
func ByAssessment(t *model.Table, schema model.Schema) []Assessment {
	if !t.Has(schema.Assessment) {
		return nil
	}
	var out []Assessment
	for _, name := range t.Distinct(schema.Assessment) {
		out = append(out, Assessment{Name: name, Table: t.Equal(schema.Assessment, name)})
	}
	return out
}

// MeanBySkill groups the rows with a valid positive rate by skill and
// averages the rate. Groups are sorted by code.
func MeanBySkill(t *model.Table, schema model.Schema) ([]Group, error) {
	for _, col := range []string{schema.SkillCode, schema.SkillDescription, schema.Rate} {
		if !t.Has(col) {
			return nil, fmt.Errorf("%w: %s", model.ErrMissingColumn, col)
		}
	}

	type key struct{ code, desc string }
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[key]*acc)
	var order []key

	for row := 0; row < t.Len(); row++ {
		raw, ok := t.Cell(row, schema.Rate)
		if !ok {
			continue
		}
		rate, ok := model.ParseNumber(raw)
		if !ok || rate <= 0 {
			continue
		}
		code, ok := t.Key(row, schema.SkillCode)
		if !ok {
			continue
		}
		desc, ok := t.Cell(row, schema.SkillDescription)
		if !ok {
			continue
		}
		k := key{code, desc}
		a, seen := sums[k]
		if !seen {
			a = &acc{}
			sums[k] = a
			order = append(order, k)
		}
		a.sum += rate
		a.n++
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		a := sums[k]
		groups = append(groups, Group{Code: k.code, Description: k.desc, Mean: a.sum / float64(a.n), Count: a.n})
	}

	numeric := t.Kind(schema.SkillCode) == model.Numeric
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Code != b.Code {
			if numeric {
				x, _ := strconv.ParseFloat(a.Code, 64)
				y, _ := strconv.ParseFloat(b.Code, 64)
				return x < y
			}
			return a.Code < b.Code
		}
		return a.Description < b.Description
	})
	return groups, nil
}
