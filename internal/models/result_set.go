package models

// ResultSet is one imported batch of analysis output, scoped to a project.
type ResultSet struct {
	BaseModel
	ProjectID string `gorm:"index;size:36;not null" json:"project_id"`
	Name      string `gorm:"size:255;not null" json:"name"`

	Rows []RawRow `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
