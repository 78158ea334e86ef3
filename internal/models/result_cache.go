package models

import (
	"time"

	"gorm.io/datatypes"
)

// The three cache tables below map (project, result type, scope key) to a
// serialized result matrix. One table per scope keeps lookups narrow and lets
// invalidation delete whole rows instead of patching blobs.

// GlobalResultCache holds story-level datasets (drifts, story shears).
type GlobalResultCache struct {
	ID         uint           `gorm:"primaryKey"`
	ProjectID  string         `gorm:"uniqueIndex:uniq_global_cache_key,priority:1;index:idx_global_cache_lookup,priority:1;size:36;not null"`
	ResultType string         `gorm:"uniqueIndex:uniq_global_cache_key,priority:2;index:idx_global_cache_lookup,priority:2;size:64;not null"`
	ScopeKey   string         `gorm:"uniqueIndex:uniq_global_cache_key,priority:3;size:128;not null;default:''"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ElementResultCache holds element-level datasets (hinge rotations, pier forces).
type ElementResultCache struct {
	ID         uint           `gorm:"primaryKey"`
	ProjectID  string         `gorm:"uniqueIndex:uniq_element_cache_key,priority:1;index:idx_element_cache_lookup,priority:1;size:36;not null"`
	ResultType string         `gorm:"uniqueIndex:uniq_element_cache_key,priority:2;index:idx_element_cache_lookup,priority:2;size:64;not null"`
	ScopeKey   string         `gorm:"uniqueIndex:uniq_element_cache_key,priority:3;size:128;not null;default:''"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JointResultCache holds joint-level datasets (displacements).
type JointResultCache struct {
	ID         uint           `gorm:"primaryKey"`
	ProjectID  string         `gorm:"uniqueIndex:uniq_joint_cache_key,priority:1;index:idx_joint_cache_lookup,priority:1;size:36;not null"`
	ResultType string         `gorm:"uniqueIndex:uniq_joint_cache_key,priority:2;index:idx_joint_cache_lookup,priority:2;size:64;not null"`
	ScopeKey   string         `gorm:"uniqueIndex:uniq_joint_cache_key,priority:3;size:128;not null;default:''"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
