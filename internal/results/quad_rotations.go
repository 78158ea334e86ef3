package results

import "github.com/seistore/seistore/internal/models"

// QuadRotationProvider computes peak hinge rotation demand per element and
// load case.
type QuadRotationProvider struct{}

func (QuadRotationProvider) ResultType() string { return "QuadRotations" }

func (QuadRotationProvider) Scope() Scope { return ScopeElement }

func (p QuadRotationProvider) Compute(rows []models.RawRow, direction string) (*Dataset, error) {
	rows = filterDirection(rows, direction)
	cols := caseColumns(rows)
	groups := groupRows(rows, func(r models.RawRow) string { return r.Element })

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
			if len(vals) > 0 {
				cells[i] = Scalar(maxAbs(vals))
			}
		}
		d.Rows = append(d.Rows, Row{Key: g.key, Cells: cells})
	}

	return d, nil
}
