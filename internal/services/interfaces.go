package services

import (
	"context"
	"time"

	"github.com/exam-coach/coach-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator types for incoming payloads
type SubmitTestRequest = validator.SubmitTestRequest
type QuestionResultRequest = validator.QuestionResultRequest

type TestSubmissionResponse struct {
	Message        string  `json:"message"`
	MockTestID     uint    `json:"mock_test_id"`
	TotalQuestions int     `json:"total_questions"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"` // percentage, 1 decimal
}

type TopicScoreEntry struct {
	Subject       string  `json:"subject"`
	Topic         string  `json:"topic"`
	ErrorRate     float64 `json:"error_rate"`
	AvgTime       float64 `json:"avg_time"`
	MistakeFreq   int     `json:"mistake_freq"`
	WeaknessScore float64 `json:"weakness_score"`
	Rank          int     `json:"rank"`
}

type AnalysisResponse struct {
	StudentID      string            `json:"student_id"`
	TotalQuestions int               `json:"total_questions"`
	TotalCorrect   int               `json:"total_correct"`
	Accuracy       float64           `json:"accuracy"` // percentage, 1 decimal
	WeakTopics     []TopicScoreEntry `json:"weak_topics"`
	StrongTopics   []TopicScoreEntry `json:"strong_topics"`
}

type ProgressPoint struct {
	TestNumber     int       `json:"test_number"`
	SubmittedAt    time.Time `json:"submitted_at"`
	Accuracy       float64   `json:"accuracy"`
	AvgTime        float64   `json:"avg_time"`
	TotalQuestions int       `json:"total_questions"`
}

type ProgressResponse struct {
	StudentID   string            `json:"student_id"`
	History     []ProgressPoint   `json:"history"`
	TopicScores []TopicScoreEntry `json:"topic_scores"`
}

// ===== GENERATED CONTENT DTOs =====

type StudyPlanDay struct {
	Day               int      `json:"day"`
	DateLabel         string   `json:"date_label"`
	Focus             string   `json:"focus"`
	DurationHours     float64  `json:"duration_hours"`
	PracticeQuestions int      `json:"practice_questions"`
	RevisionBlocks    []string `json:"revision_blocks"`
	Tip               string   `json:"tip"`
}

type StudyPlanResponse struct {
	StudentID string         `json:"student_id"`
	CreatedAt time.Time      `json:"created_at"`
	Days      []StudyPlanDay `json:"days"`
}

type ResourceLink struct {
	Type  string `json:"type"` // "youtube" or "article"
	Title string `json:"title"`
	URL   string `json:"url"`
}

type TopicRecommendation struct {
	Topic             string         `json:"topic"`
	Subject           string         `json:"subject"`
	WhyWeak           string         `json:"why_weak"`
	ConceptRevision   []string       `json:"concept_revision"`
	PracticeExercises []string       `json:"practice_exercises"`
	MockTests         []string       `json:"mock_tests"`
	Resources         []ResourceLink `json:"resources"`
	ImprovementTip    string         `json:"improvement_tip"`
}

type RecommendationsResponse struct {
	StudentID       string                `json:"student_id"`
	CreatedAt       time.Time             `json:"created_at"`
	Recommendations []TopicRecommendation `json:"recommendations"`
}

// WeakTopic is the ranked weak-topic summary handed to the content
// generators.
type WeakTopic struct {
	Subject       string  `json:"subject"`
	Topic         string  `json:"topic"`
	WeaknessScore float64 `json:"weakness_score"`
	ErrorRate     float64 `json:"error_rate"`
	AvgTime       float64 `json:"avg_time"`
	MistakeFreq   int     `json:"mistake_freq"`
}

// ===== SERVICE INTERFACES =====

type ScoringService interface {
	// SubmitTest records a completed mock test and synchronously recomputes
	// the student's topic scores.
	SubmitTest(ctx context.Context, studentID string, req *SubmitTestRequest) (*TestSubmissionResponse, error)

	// RecomputeScores rebuilds every topic score for the student from their
	// full outcome history. Idempotent; a no-op for students with no history.
	RecomputeScores(ctx context.Context, studentID string) error
}

type AnalysisService interface {
	GetAnalysis(ctx context.Context, studentID string) (*AnalysisResponse, error)
	GetProgress(ctx context.Context, studentID string) (*ProgressResponse, error)

	// ExportAnalysis renders the ranked topic table as an xlsx workbook.
	ExportAnalysis(ctx context.Context, studentID string) ([]byte, error)
}

type GenerationService interface {
	GenerateStudyPlan(ctx context.Context, studentID string) (*StudyPlanResponse, error)
	GetLatestStudyPlan(ctx context.Context, studentID string) (*StudyPlanResponse, error)

	GenerateRecommendations(ctx context.Context, studentID string) (*RecommendationsResponse, error)
	GetLatestRecommendations(ctx context.Context, studentID string) (*RecommendationsResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Scoring() ScoringService
	Analysis() AnalysisService
	Generation() GenerationService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
