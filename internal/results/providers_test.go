package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seistore/seistore/internal/models"
	apperrors "github.com/seistore/seistore/pkg/errors"
)

func driftRow(story, loadCase string, value float64) models.RawRow {
	return models.RawRow{
		ResultType: "Drifts",
		Story:      story,
		LoadCase:   loadCase,
		Value:      value,
	}
}

func TestDriftProviderTakesGroupMaximum(t *testing.T) {
	rows := []models.RawRow{
		driftRow("L01", "DES_X", 0.01),
		driftRow("L01", "DES_X", 0.02),
	}

	d, err := DriftProvider{}.Compute(rows, "")
	require.NoError(t, err)

	require.Equal(t, []string{"DES_X"}, d.Columns)
	require.Len(t, d.Rows, 1)
	require.Equal(t, "L01", d.Rows[0].Key)
	// 0.02 wins the group and is normalized to percent
	require.Equal(t, []float64{2}, d.Rows[0].Cells[0].Floats())
	require.True(t, d.Rows[0].Cells[0].IsScalar())
}

func TestDriftProviderHonoursPercentSuffix(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "Drifts", Story: "L03", LoadCase: "DES_X", RawText: "1.23%"},
	}

	d, err := DriftProvider{}.Compute(rows, "")
	require.NoError(t, err)
	require.Equal(t, []float64{1.23}, d.Rows[0].Cells[0].Floats())
}

func TestDriftProviderFiltersDirection(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "Drifts", Story: "L01", LoadCase: "DES", Direction: "X", Value: 0.01},
		{ResultType: "Drifts", Story: "L01", LoadCase: "DES", Direction: "Y", Value: 0.05},
	}

	d, err := DriftProvider{}.Compute(rows, "X")
	require.NoError(t, err)
	require.Len(t, d.Rows, 1)
	require.Equal(t, []float64{1}, d.Rows[0].Cells[0].Floats())
	require.Equal(t, "X", d.Direction)
}

func TestStoryShearProviderBuildsEnvelopePairs(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "StoryShears", Story: "L01", LoadCase: "DES_X", Value: -120, Unit: "kN"},
		{ResultType: "StoryShears", Story: "L01", LoadCase: "DES_X", Value: 150, Unit: "kN"},
		{ResultType: "StoryShears", Story: "L01", LoadCase: "MCE_X", Value: 180, Unit: "kN"},
	}

	d, err := StoryShearProvider{}.Compute(rows, "")
	require.NoError(t, err)

	require.Equal(t, []string{"DES_X", "MCE_X"}, d.Columns)
	require.Equal(t, []float64{-120, 150}, d.Rows[0].Cells[0].Floats())
	// single sample collapses to a scalar, not a one-element array
	require.True(t, d.Rows[0].Cells[1].IsScalar())
	require.Equal(t, []float64{180}, d.Rows[0].Cells[1].Floats())
}

func TestStoryShearProviderRejectsMixedUnits(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "StoryShears", Story: "L01", LoadCase: "DES_X", Value: -120, Unit: "kN"},
		{ResultType: "StoryShears", Story: "L01", LoadCase: "DES_X", Value: 30, Unit: "kip"},
	}

	_, err := StoryShearProvider{}.Compute(rows, "")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.ErrAmbiguousGrouping.Code, appErr.Code)
}

func TestQuadRotationProviderPreservesSignOfPeak(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "QuadRotations", Element: "W1-H3", LoadCase: "MCE_X", Value: 0.004},
		{ResultType: "QuadRotations", Element: "W1-H3", LoadCase: "MCE_X", Value: -0.009},
	}

	d, err := QuadRotationProvider{}.Compute(rows, "")
	require.NoError(t, err)
	require.Equal(t, "W1-H3", d.Rows[0].Key)
	require.Equal(t, []float64{-0.009}, d.Rows[0].Cells[0].Floats())
}

func TestPierForceProviderGroupsByPierAndStory(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "PierForces", Element: "P1", Story: "L01", LoadCase: "DES_X", Measure: "P", Value: -900, Unit: "kN"},
		{ResultType: "PierForces", Element: "P1", Story: "L01", LoadCase: "MCE_X", Measure: "P", Value: -1400, Unit: "kN"},
		{ResultType: "PierForces", Element: "P1", Story: "L01", LoadCase: "DES_X", Measure: "M3", Value: 310, Unit: "kN-m"},
		{ResultType: "PierForces", Element: "P1", Story: "L02", LoadCase: "DES_X", Measure: "P", Value: -400, Unit: "kN"},
	}

	d, err := PierForceProvider{}.Compute(rows, "")
	require.NoError(t, err)

	require.Equal(t, []string{"P", "M3"}, d.Columns)
	require.Len(t, d.Rows, 2)
	require.Equal(t, "P1@L01", d.Rows[0].Key)
	require.Equal(t, []float64{-1400, -900}, d.Rows[0].Cells[0].Floats())
	require.Equal(t, []float64{310}, d.Rows[0].Cells[1].Floats())
	require.Equal(t, "P1@L02", d.Rows[1].Key)
}

func TestPierForceProviderAllowsDifferentUnitsAcrossMeasures(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "PierForces", Element: "P2", Story: "L01", LoadCase: "DES_X", Measure: "P", Value: -900, Unit: "kN"},
		{ResultType: "PierForces", Element: "P2", Story: "L01", LoadCase: "DES_X", Measure: "M3", Value: 310, Unit: "kN-m"},
	}

	_, err := PierForceProvider{}.Compute(rows, "")
	require.NoError(t, err)
}

func TestJointDisplacementProviderGroupsByJoint(t *testing.T) {
	rows := []models.RawRow{
		{ResultType: "JointDisplacements", Joint: "J12", LoadCase: "DES_X", Value: 14.2},
		{ResultType: "JointDisplacements", Joint: "J12", LoadCase: "DES_X", Value: -18.7},
		{ResultType: "JointDisplacements", Joint: "J13", LoadCase: "DES_X", Value: 3.1},
	}

	d, err := JointDisplacementProvider{}.Compute(rows, "")
	require.NoError(t, err)
	require.Len(t, d.Rows, 2)
	require.Equal(t, []float64{-18.7}, d.Rows[0].Cells[0].Floats())
}

func TestProvidersAreDeterministic(t *testing.T) {
	rows := []models.RawRow{
		driftRow("L02", "DES_X", 0.011),
		driftRow("L01", "DES_X", 0.008),
		driftRow("L02", "MCE_X", 0.019),
	}

	first, err := DriftProvider{}.Compute(rows, "")
	require.NoError(t, err)
	second, err := DriftProvider{}.Compute(rows, "")
	require.NoError(t, err)

	a, err := first.Encode()
	require.NoError(t, err)
	b, err := second.Encode()
	require.NoError(t, err)
	require.Equal(t, a, b)
}
