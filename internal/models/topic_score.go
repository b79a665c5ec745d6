package models

import "time"

// TopicScore holds the current weakness metrics for one (student, subject,
// topic) key. Exactly one row per key: the scorer overwrites it on every pass.
type TopicScore struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_subject_topic"`
	Subject   string `json:"subject" gorm:"size:100;not null;uniqueIndex:idx_student_subject_topic"`
	Topic     string `json:"topic" gorm:"size:200;not null;uniqueIndex:idx_student_subject_topic"`

	ErrorRate     float64 `json:"error_rate"`               // [0,1], rounded to 4 decimals
	AvgTime       float64 `json:"avg_time"`                 // seconds, rounded to 2 decimals
	MistakeFreq   int     `json:"mistake_freq"`             // raw incorrect count
	WeaknessScore float64 `json:"weakness_score" gorm:"index"` // [0,1], rounded to 4 decimals

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}
