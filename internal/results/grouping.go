package results

import (
	"fmt"
	"math"

	"github.com/seistore/seistore/internal/models"
	apperrors "github.com/seistore/seistore/pkg/errors"
)

type group struct {
	key  string
	rows []models.RawRow
}

// groupRows buckets rows by key in first-seen order, which is stable for a
// given input sequence and therefore deterministic across rebuilds.
func groupRows(rows []models.RawRow, keyFn func(models.RawRow) string) []group {
	index := make(map[string]int)
	var groups []group

	for _, row := range rows {
		key := keyFn(row)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].rows = append(groups[i].rows, row)
	}

	return groups
}

// checkUnits rejects groups whose rows disagree on the unit for the same
// measure. Silently merging kN with kip would fabricate garbage envelopes.
func checkUnits(g group) error {
	units := make(map[string]string)
	for _, row := range g.rows {
		if row.Unit == "" {
			continue
		}
		if prev, ok := units[row.Measure]; ok && prev != row.Unit {
			return apperrors.ErrAmbiguousGrouping.WithMessage(
				fmt.Sprintf("group %q mixes units %q and %q", g.key, prev, row.Unit))
		}
		units[row.Measure] = row.Unit
	}
	return nil
}

// caseColumns collects load case names in first-seen order.
func caseColumns(rows []models.RawRow) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		if row.LoadCase == "" {
			continue
		}
		if _, ok := seen[row.LoadCase]; ok {
			continue
		}
		seen[row.LoadCase] = struct{}{}
		cols = append(cols, row.LoadCase)
	}
	return cols
}

// measureColumns collects measure names in first-seen order.
func measureColumns(rows []models.RawRow) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		if row.Measure == "" {
			continue
		}
		if _, ok := seen[row.Measure]; ok {
			continue
		}
		seen[row.Measure] = struct{}{}
		cols = append(cols, row.Measure)
	}
	return cols
}

// filterDirection keeps rows belonging to one direction. A row declares its
// direction either in its Direction column or via a suffixed result type
// ("Drifts_X"); imports commonly fill only one of the two.
func filterDirection(rows []models.RawRow, direction string) []models.RawRow {
	if direction == "" {
		return rows
	}
	out := make([]models.RawRow, 0, len(rows))
	for _, row := range rows {
		if rowDirection(row) == direction {
			out = append(out, row)
		}
	}
	return out
}

func rowDirection(row models.RawRow) string {
	if row.Direction != "" {
		return row.Direction
	}
	_, direction := ExtractBaseType(row.ResultType)
	return direction
}

// maxAbs returns the value with the largest magnitude, preserving sign.
func maxAbs(values []float64) float64 {
	var best float64
	for i, v := range values {
		if i == 0 || math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}

// envelope reduces a slice to its min/max pair, or a scalar for one value.
func envelope(values []float64) Value {
	switch len(values) {
	case 0:
		return Value{}
	case 1:
		return Scalar(values[0])
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return List(lo, hi)
}
