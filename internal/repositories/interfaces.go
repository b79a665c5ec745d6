package repositories

import (
	"context"

	"github.com/exam-coach/coach-service/internal/models"
)

type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)

	// EnsureExists creates the student row on first contact so that
	// submissions never fail on a missing foreign key.
	EnsureExists(ctx context.Context, id string, name string) (*models.Student, error)
}

type MockTestRepository interface {
	// Create persists the test together with its question results.
	Create(ctx context.Context, test *models.MockTest) error

	// GetByStudent returns all tests for a student with results preloaded,
	// ordered by submission time ascending.
	GetByStudent(ctx context.Context, studentID string) ([]*models.MockTest, error)

	// GetResultsByStudent returns every question result ever recorded for a
	// student, across all of their tests.
	GetResultsByStudent(ctx context.Context, studentID string) ([]*models.QuestionResult, error)
}

type TopicScoreRepository interface {
	// Upsert overwrites the row for (student, subject, topic), inserting it
	// if absent.
	Upsert(ctx context.Context, score *models.TopicScore) error

	// GetByStudent returns all scores ordered by weakness score descending.
	// Ties keep insertion order.
	GetByStudent(ctx context.Context, studentID string) ([]*models.TopicScore, error)

	// GetTop returns the weakest topics, capped at limit.
	GetTop(ctx context.Context, studentID string, limit int) ([]*models.TopicScore, error)
}

type StudyPlanRepository interface {
	Create(ctx context.Context, plan *models.StudyPlan) error
	GetLatest(ctx context.Context, studentID string) (*models.StudyPlan, error)
}

type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	GetLatest(ctx context.Context, studentID string) (*models.Recommendation, error)
}
