package results

import "github.com/seistore/seistore/internal/models"

// StoryShearProvider computes per-story shear envelopes: for each story and
// load case, the min/max pair across output steps.
type StoryShearProvider struct{}

func (StoryShearProvider) ResultType() string { return "StoryShears" }

func (StoryShearProvider) Scope() Scope { return ScopeGlobal }

func (p StoryShearProvider) Compute(rows []models.RawRow, direction string) (*Dataset, error) {
	rows = filterDirection(rows, direction)
	cols := caseColumns(rows)
	groups := groupRows(rows, func(r models.RawRow) string { return r.Story })

	d := &Dataset{ResultType: p.ResultType(), Direction: direction, Columns: cols}
	for _, g := range groups {
		if err := checkUnits(g); err != nil {
			return nil, err
		}

		cells := make([]Value, len(cols))
		for i, loadCase := range cols {
			var vals []float64
			for _, row := range g.rows {
				if row.LoadCase != loadCase {
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
