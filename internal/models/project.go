package models

import "strings"

// AnalysisType classifies the analysis runs a project collects.
type AnalysisType string

const (
	AnalysisNLTHA    AnalysisType = "NLTHA"
	AnalysisPushover AnalysisType = "Pushover"
	AnalysisMixed    AnalysisType = "Mixed"
)

// NormalizeAnalysisType maps free-form input onto the closed set of analysis
// types. Unrecognised values fall back to NLTHA.
func NormalizeAnalysisType(value string) AnalysisType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pushover", "push-over", "nsp":
		return AnalysisPushover
	case "mixed", "both":
		return AnalysisMixed
	default:
		return AnalysisNLTHA
	}
}

// Project owns all imported results and cached datasets for one structure.
type Project struct {
	BaseModel
	Name         string       `gorm:"uniqueIndex;size:255;not null" json:"name"`
	AnalysisType AnalysisType `gorm:"size:16;not null;default:NLTHA" json:"analysis_type"`

	ResultSets []ResultSet `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
