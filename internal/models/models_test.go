package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBaseModelBeforeCreateKeepsExistingID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID != "fixed" {
		t.Fatalf("expected ID to be preserved, got %q", base.ID)
	}
}

func TestNormalizeAnalysisType(t *testing.T) {
	cases := []struct {
		input string
		want  AnalysisType
	}{
		{"NLTHA", AnalysisNLTHA},
		{"nltha", AnalysisNLTHA},
		{"Pushover", AnalysisPushover},
		{" push-over ", AnalysisPushover},
		{"NSP", AnalysisPushover},
		{"Mixed", AnalysisMixed},
		{"both", AnalysisMixed},
		{"", AnalysisNLTHA},
		{"time history", AnalysisNLTHA},
	}

	for _, tc := range cases {
		if got := NormalizeAnalysisType(tc.input); got != tc.want {
			t.Fatalf("NormalizeAnalysisType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
