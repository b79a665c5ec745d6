package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

type studyPlanPostgreSQL struct {
	db *gorm.DB
}

func NewStudyPlanPostgreSQL(db *gorm.DB) repositories.StudyPlanRepository {
	return &studyPlanPostgreSQL{db: db}
}

func (r *studyPlanPostgreSQL) Create(ctx context.Context, plan *models.StudyPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create study plan: %w", err)
	}
	return nil
}

func (r *studyPlanPostgreSQL) GetLatest(ctx context.Context, studentID string) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest study plan: %w", err)
	}
	return &plan, nil
}

type recommendationPostgreSQL struct {
	db *gorm.DB
}

func NewRecommendationPostgreSQL(db *gorm.DB) repositories.RecommendationRepository {
	return &recommendationPostgreSQL{db: db}
}

func (r *recommendationPostgreSQL) Create(ctx context.Context, rec *models.Recommendation) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}
	return nil
}

func (r *recommendationPostgreSQL) GetLatest(ctx context.Context, studentID string) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest recommendation: %w", err)
	}
	return &rec, nil
}
