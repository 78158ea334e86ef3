package results

import (
	"fmt"

	"github.com/seistore/seistore/internal/models"
)

// PierForceProvider computes in-plane force envelopes per pier and story.
// Columns are force measures (P, V2, V3, M2, M3); each cell is the min/max
// pair across all load cases and output steps.
type PierForceProvider struct{}

func (PierForceProvider) ResultType() string { return "PierForces" }

func (PierForceProvider) Scope() Scope { return ScopeElement }

func (p PierForceProvider) Compute(rows []models.RawRow, direction string) (*Dataset, error) {
	rows = filterDirection(rows, direction)
	cols := measureColumns(rows)
	groups := groupRows(rows, func(r models.RawRow) string {
		if r.Element == "" || r.Story == "" {
			return ""
		}
		return fmt.Sprintf("%s@%s", r.Element, r.Story)
	})

	d := &Dataset{ResultType: p.ResultType(), Direction: direction, Columns: cols}
	for _, g := range groups {
		if err := checkUnits(g); err != nil {
			return nil, err
		}

		cells := make([]Value, len(cols))
		for i, measure := range cols {
			var vals []float64
			for _, row := range g.rows {
				if row.Measure != measure {
					continue
				}
				vals = append(vals, row.Value)
			}
			cells[i] = envelope(vals)
		}
		d.Rows = append(d.Rows, Row{Key: g.key, Cells: cells})
	}

	return d, nil
}
