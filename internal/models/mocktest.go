package models

import (
	"time"

	"gorm.io/datatypes"
)

// MockTest is one submitted mock exam. The raw submission payload is kept
// alongside the graded per-question rows for auditability.
type MockTest struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	StudentID   string         `json:"student_id" gorm:"not null;index;size:255"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"autoCreateTime;index"`
	RawPayload  datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb"`

	// Relations
	Student Student          `json:"-" gorm:"foreignKey:StudentID"`
	Results []QuestionResult `json:"results,omitempty" gorm:"foreignKey:MockTestID"`
}

// QuestionResult is one graded answer. Rows are immutable once recorded;
// correctness is derived at submission time and never recomputed.
type QuestionResult struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	MockTestID uint   `json:"mock_test_id" gorm:"not null;index"`
	Subject    string `json:"subject" gorm:"size:100;not null"`
	Topic      string `json:"topic" gorm:"size:200;not null"`
	QuestionID string `json:"question_id" gorm:"size:50"`

	StudentAnswer string  `json:"student_answer" gorm:"size:255"`
	CorrectAnswer string  `json:"correct_answer" gorm:"size:255"`
	TimeTaken     float64 `json:"time_taken"` // seconds
	IsCorrect     bool    `json:"is_correct"`

	// Relations
	MockTest MockTest `json:"-" gorm:"foreignKey:MockTestID"`
}
