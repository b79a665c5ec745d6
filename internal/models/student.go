package models

import "time"

type Student struct {
	ID    string  `json:"id" gorm:"primaryKey;size:255"`
	Name  string  `json:"name" gorm:"size:120;not null;default:Student"`
	Email *string `json:"email" gorm:"size:255;uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	MockTests       []MockTest       `json:"mock_tests,omitempty" gorm:"foreignKey:StudentID"`
	TopicScores     []TopicScore     `json:"topic_scores,omitempty" gorm:"foreignKey:StudentID"`
	StudyPlans      []StudyPlan      `json:"study_plans,omitempty" gorm:"foreignKey:StudentID"`
	Recommendations []Recommendation `json:"recommendations,omitempty" gorm:"foreignKey:StudentID"`
}
