package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

type topicScorePostgreSQL struct {
	db *gorm.DB
}

func NewTopicScorePostgreSQL(db *gorm.DB) repositories.TopicScoreRepository {
	return &topicScorePostgreSQL{db: db}
}

func (r *topicScorePostgreSQL) Upsert(ctx context.Context, score *models.TopicScore) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "subject"}, {Name: "topic"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"error_rate", "avg_time", "mistake_freq", "weakness_score", "updated_at",
			}),
		}).
		Create(score).Error
	if err != nil {
		return fmt.Errorf("failed to upsert topic score: %w", err)
	}
	return nil
}

func (r *topicScorePostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.TopicScore, error) {
	var scores []*models.TopicScore
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("weakness_score DESC, id ASC").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get topic scores: %w", err)
	}
	return scores, nil
}

func (r *topicScorePostgreSQL) GetTop(ctx context.Context, studentID string, limit int) ([]*models.TopicScore, error) {
	var scores []*models.TopicScore
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("weakness_score DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to get top topic scores: %w", err)
	}
	return scores, nil
}
