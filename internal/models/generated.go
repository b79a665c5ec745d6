package models

import (
	"time"

	"gorm.io/datatypes"
)

// StudyPlan is one generated 7-day plan. Records are append-only; "latest"
// means most recent CreatedAt.
type StudyPlan struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID string         `json:"student_id" gorm:"not null;index;size:255"`
	Plan      datatypes.JSON `json:"plan" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`

	// Relations
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}

// Recommendation is one generated set of per-topic study recommendations,
// append-only like StudyPlan.
type Recommendation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID string         `json:"student_id" gorm:"not null;index;size:255"`
	Recs      datatypes.JSON `json:"recommendations" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`

	// Relations
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}
