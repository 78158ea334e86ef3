package models

import "time"

// RawRow is a single imported measurement. Rows are immutable once written;
// corrections happen by importing a fresh result set.
type RawRow struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ResultSetID string `gorm:"index;size:36;not null" json:"result_set_id"`
	ProjectID   string `gorm:"index:idx_raw_rows_project_type,priority:1;size:36;not null" json:"project_id"`
	ResultType  string `gorm:"index:idx_raw_rows_project_type,priority:2;size:64;not null" json:"result_type"`

	Story     string `gorm:"size:64" json:"story,omitempty"`
	Element   string `gorm:"size:64" json:"element,omitempty"`
	Joint     string `gorm:"size:64" json:"joint,omitempty"`
	LoadCase  string `gorm:"size:64" json:"load_case"`
	Direction string `gorm:"size:8" json:"direction,omitempty"`
	Measure   string `gorm:"size:32" json:"measure,omitempty"`
	Unit      string `gorm:"size:16" json:"unit,omitempty"`

	Value float64 `json:"value"`
	// RawText preserves the source cell verbatim, including any % suffix.
	RawText string `gorm:"size:64" json:"raw_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
