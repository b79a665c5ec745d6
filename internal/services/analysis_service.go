package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/exam-coach/coach-service/internal/cache"
	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

// weakShare is the fraction of ranked topics assigned to the weak cohort.
const weakShare = 0.6

type analysisService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewAnalysisService(repo repositories.Repository, logger *slog.Logger, cacheManager *cache.CacheManager) AnalysisService {
	return &analysisService{
		repo:   repo,
		logger: logger,
		cache:  cacheManager,
	}
}

// GetAnalysis returns the ranked weak/strong partition of the student's
// current topic scores plus overall accuracy. Read-only; served from cache
// when a scoring pass has not invalidated it.
func (s *analysisService) GetAnalysis(ctx context.Context, studentID string) (*AnalysisResponse, error) {
	if s.cache != nil {
		var cached AnalysisResponse
		if err := s.cache.Analysis.Get(ctx, studentID, &cached); err == nil {
			return &cached, nil
		}
	}

	scores, err := s.repo.TopicScore().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic scores: %w", err)
	}

	results, err := s.repo.MockTest().GetResultsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question results: %w", err)
	}

	total := len(results)
	correct := 0
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}

	ranked := rankScores(scores)
	weakCount := weakCohortSize(len(ranked))

	accuracy := 0.0
	if total > 0 {
		accuracy = roundTo(float64(correct)/float64(total)*100, 1)
	}

	resp := &AnalysisResponse{
		StudentID:      studentID,
		TotalQuestions: total,
		TotalCorrect:   correct,
		Accuracy:       accuracy,
		WeakTopics:     ranked[:weakCount],
		StrongTopics:   ranked[weakCount:],
	}

	if s.cache != nil {
		if err := s.cache.Analysis.Set(ctx, studentID, resp, cache.AnalysisCacheConfig.TTL); err != nil {
			s.logger.Warn("Failed to cache analysis", "student_id", studentID, "error", err)
		}
	}

	return resp, nil
}

// GetProgress returns per-test accuracy history in submission order plus the
// current ranked topic scores.
func (s *analysisService) GetProgress(ctx context.Context, studentID string) (*ProgressResponse, error) {
	tests, err := s.repo.MockTest().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mock tests: %w", err)
	}

	history := make([]ProgressPoint, 0, len(tests))
	for i, test := range tests {
		total := len(test.Results)
		correct := 0
		timeSum := 0.0
		for _, r := range test.Results {
			if r.IsCorrect {
				correct++
			}
			timeSum += r.TimeTaken
		}

		accuracy := 0.0
		avgTime := 0.0
		if total > 0 {
			accuracy = roundTo(float64(correct)/float64(total)*100, 1)
			avgTime = roundTo(timeSum/float64(total), 1)
		}

		history = append(history, ProgressPoint{
			TestNumber:     i + 1,
			SubmittedAt:    test.SubmittedAt,
			Accuracy:       accuracy,
			AvgTime:        avgTime,
			TotalQuestions: total,
		})
	}

	scores, err := s.repo.TopicScore().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic scores: %w", err)
	}

	return &ProgressResponse{
		StudentID:   studentID,
		History:     history,
		TopicScores: rankScores(scores),
	}, nil
}

// ExportAnalysis renders the ranked topic table as an xlsx workbook.
func (s *analysisService) ExportAnalysis(ctx context.Context, studentID string) ([]byte, error) {
	analysis, err := s.GetAnalysis(ctx, studentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Weakness Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []string{"Rank", "Subject", "Topic", "Error Rate", "Avg Time (s)", "Mistakes", "Weakness Score", "Cohort"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	writeRow := func(row int, entry TopicScoreEntry, cohort string) error {
		values := []interface{}{
			entry.Rank, entry.Subject, entry.Topic,
			entry.ErrorRate, entry.AvgTime, entry.MistakeFreq,
			entry.WeaknessScore, cohort,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	row := 2
	for _, entry := range analysis.WeakTopics {
		if err := writeRow(row, entry, "weak"); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
		row++
	}
	for _, entry := range analysis.StrongTopics {
		if err := writeRow(row, entry, "strong"); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Analysis report exported",
		"student_id", studentID,
		"topics", len(analysis.WeakTopics)+len(analysis.StrongTopics))

	return buf.Bytes(), nil
}

// rankScores annotates stored scores (already ordered by weakness
// descending) with their 1-based rank.
func rankScores(scores []*models.TopicScore) []TopicScoreEntry {
	ranked := make([]TopicScoreEntry, 0, len(scores))
	for i, sc := range scores {
		ranked = append(ranked, TopicScoreEntry{
			Subject:       sc.Subject,
			Topic:         sc.Topic,
			ErrorRate:     sc.ErrorRate,
			AvgTime:       sc.AvgTime,
			MistakeFreq:   sc.MistakeFreq,
			WeaknessScore: sc.WeaknessScore,
			Rank:          i + 1,
		})
	}
	return ranked
}

// weakCohortSize returns ceil(weakShare*n), at least 1 for any non-empty
// ranking.
func weakCohortSize(n int) int {
	if n == 0 {
		return 0
	}
	size := int(math.Ceil(weakShare * float64(n)))
	if size < 1 {
		size = 1
	}
	return size
}
