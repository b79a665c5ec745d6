package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

type mockTestPostgreSQL struct {
	db *gorm.DB
}

func NewMockTestPostgreSQL(db *gorm.DB) repositories.MockTestRepository {
	return &mockTestPostgreSQL{db: db}
}

func (r *mockTestPostgreSQL) Create(ctx context.Context, test *models.MockTest) error {
	// gorm persists the Results association in the same insert batch.
	if err := r.db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create mock test: %w", err)
	}
	return nil
}

func (r *mockTestPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.MockTest, error) {
	var tests []*models.MockTest
	err := r.db.WithContext(ctx).
		Preload("Results").
		Where("student_id = ?", studentID).
		Order("submitted_at ASC, id ASC").
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get mock tests: %w", err)
	}
	return tests, nil
}

func (r *mockTestPostgreSQL) GetResultsByStudent(ctx context.Context, studentID string) ([]*models.QuestionResult, error) {
	var results []*models.QuestionResult
	err := r.db.WithContext(ctx).
		Joins("JOIN mock_tests ON mock_tests.id = question_results.mock_test_id").
		Where("mock_tests.student_id = ?", studentID).
		Order("question_results.id ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get question results: %w", err)
	}
	return results, nil
}
