package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

type studentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &studentPostgreSQL{db: db}
}

func (r *studentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).First(&student, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *studentPostgreSQL) EnsureExists(ctx context.Context, id string, name string) (*models.Student, error) {
	student := &models.Student{ID: id, Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(student).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure student exists: %w", err)
	}
	return r.GetByID(ctx, id)
}
