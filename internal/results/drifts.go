package results

import "github.com/seistore/seistore/internal/models"

// DriftProvider computes story drift ratios: per story and load case, the
// peak drift across all output steps, expressed in percent.
type DriftProvider struct{}

func (DriftProvider) ResultType() string { return "Drifts" }

func (DriftProvider) Scope() Scope { return ScopeGlobal }

func (p DriftProvider) Compute(rows []models.RawRow, direction string) (*Dataset, error) {
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
				vals = append(vals, driftPercent(row))
			}
			if len(vals) > 0 {
				cells[i] = Scalar(maxAbs(vals))
			}
		}
		d.Rows = append(d.Rows, Row{Key: g.key, Cells: cells})
	}

	return d, nil
}

// driftPercent normalizes a drift row to percent, preferring the verbatim
// source text so an explicit "%" suffix is honoured.
func driftPercent(row models.RawRow) float64 {
	if row.RawText != "" {
		return ParsePercentageValue(row.RawText)
	}
	return ParsePercentageValue(row.Value)
}
