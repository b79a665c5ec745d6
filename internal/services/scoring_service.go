package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/exam-coach/coach-service/internal/cache"
	"github.com/exam-coach/coach-service/internal/events"
	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
	"github.com/exam-coach/coach-service/internal/validator"
)

// Weighting of the weakness score components. Accuracy dominates; response
// time and mistake recurrence are secondary signals.
const (
	errorRateWeight    = 0.6
	normTimeWeight     = 0.2
	normMistakesWeight = 0.2
)

type scoringService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     *cache.CacheManager
}

func NewScoringService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	cacheManager *cache.CacheManager,
) ScoringService {
	return &scoringService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheManager,
	}
}

// SubmitTest records the graded outcomes and then recomputes topic scores
// from the student's full history. Recording and scoring are two phases: a
// scoring failure fails the submission but leaves the recorded outcomes in
// place.
func (s *scoringService) SubmitTest(ctx context.Context, studentID string, req *SubmitTestRequest) (*TestSubmissionResponse, error) {
	if errs := s.validator.ValidateSubmitTest(req); errs.HasErrors() {
		return nil, NewValidationError("questions", errs.Error(), nil)
	}

	if _, err := s.repo.Student().EnsureExists(ctx, studentID, "Student"); err != nil {
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	rawPayload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize submission: %w", err)
	}

	test := &models.MockTest{
		StudentID:  studentID,
		RawPayload: rawPayload,
	}

	correct := 0
	for _, q := range req.Questions {
		isCorrect := answersMatch(q.StudentAnswer, q.CorrectAnswer)
		if isCorrect {
			correct++
		}
		test.Results = append(test.Results, models.QuestionResult{
			Subject:       q.Subject,
			Topic:         q.Topic,
			QuestionID:    q.QuestionID,
			StudentAnswer: q.StudentAnswer,
			CorrectAnswer: q.CorrectAnswer,
			TimeTaken:     q.TimeTaken,
			IsCorrect:     isCorrect,
		})
	}

	if err := s.repo.MockTest().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to record test submission: %w", err)
	}

	if err := s.RecomputeScores(ctx, studentID); err != nil {
		return nil, fmt.Errorf("failed to score submission: %w", err)
	}

	cache.InvalidateStudentViews(ctx, s.cache, studentID)

	total := len(req.Questions)
	accuracy := 0.0
	if total > 0 {
		accuracy = roundTo(float64(correct)/float64(total)*100, 1)
	}

	s.publishSubmissionEvents(ctx, studentID, test.ID, total, correct)

	s.logger.Info("Test submitted and scored",
		"student_id", studentID,
		"mock_test_id", test.ID,
		"total_questions", total,
		"correct", correct)

	return &TestSubmissionResponse{
		Message:        "Test submitted and analysed successfully.",
		MockTestID:     test.ID,
		TotalQuestions: total,
		Correct:        correct,
		Accuracy:       accuracy,
	}, nil
}

// RecomputeScores rebuilds all topic scores for one student from scratch.
// All rows of a pass are written in a single transaction.
func (s *scoringService) RecomputeScores(ctx context.Context, studentID string) error {
	results, err := s.repo.MockTest().GetResultsByStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load question results: %w", err)
	}

	aggregates := aggregateResults(results)
	if len(aggregates) == 0 {
		s.logger.Debug("No outcomes to score", "student_id", studentID)
		return nil
	}

	scores := computeTopicScores(studentID, aggregates)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, score := range scores {
			if err := txRepo.TopicScore().Upsert(ctx, score); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist topic scores: %w", err)
	}

	s.logger.Info("Topic scores updated",
		"student_id", studentID,
		"topics", len(scores))

	return nil
}

func (s *scoringService) publishSubmissionEvents(ctx context.Context, studentID string, mockTestID uint, total, correct int) {
	if s.publisher == nil {
		return
	}

	now := time.Now().UTC()
	evts := []events.Event{
		{
			Type:       events.TopicTestSubmitted,
			StudentID:  studentID,
			OccurredAt: now,
			Payload: map[string]interface{}{
				"mock_test_id":    mockTestID,
				"total_questions": total,
				"correct":         correct,
			},
		},
		{
			Type:       events.TopicScoresUpdated,
			StudentID:  studentID,
			OccurredAt: now,
		},
	}

	for _, evt := range evts {
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Failed to publish event",
				"event_type", evt.Type,
				"student_id", studentID,
				"error", err)
		}
	}
}

// answersMatch implements the grading rule: case-insensitive comparison of
// the trimmed answers.
func answersMatch(studentAnswer, correctAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(studentAnswer), strings.TrimSpace(correctAnswer))
}

// topicAggregate is the transient per-(subject, topic) summary rebuilt from
// scratch on every scoring pass.
type topicAggregate struct {
	subject string
	topic   string
	total   int
	correct int
	wrong   int
	times   []float64
}

// aggregateResults groups outcomes by (subject, topic), preserving
// first-seen order so that score upserts stay deterministic.
func aggregateResults(results []*models.QuestionResult) []*topicAggregate {
	byKey := make(map[string]*topicAggregate)
	var order []*topicAggregate

	for _, r := range results {
		key := r.Subject + "\x00" + r.Topic
		agg, ok := byKey[key]
		if !ok {
			agg = &topicAggregate{subject: r.Subject, topic: r.Topic}
			byKey[key] = agg
			order = append(order, agg)
		}

		agg.total++
		if r.IsCorrect {
			agg.correct++
		} else {
			agg.wrong++
		}
		agg.times = append(agg.times, r.TimeTaken)
	}

	return order
}

// computeTopicScores derives one TopicScore per aggregate. Time and mistake
// normalization is cross-topic within this pass: each metric is divided by
// the maximum observed for this student, floored at 1, so both land in [0,1]
// and no single noisy topic dominates through magnitude alone.
func computeTopicScores(studentID string, aggregates []*topicAggregate) []*models.TopicScore {
	maxTime := 1.0
	maxMistakes := 1
	for _, agg := range aggregates {
		for _, t := range agg.times {
			if t > maxTime {
				maxTime = t
			}
		}
		if agg.wrong > maxMistakes {
			maxMistakes = agg.wrong
		}
	}

	scores := make([]*models.TopicScore, 0, len(aggregates))
	for _, agg := range aggregates {
		errorRate := 0.0
		if agg.total > 0 {
			errorRate = 1 - float64(agg.correct)/float64(agg.total)
		}

		avgTime := 0.0
		if len(agg.times) > 0 {
			sum := 0.0
			for _, t := range agg.times {
				sum += t
			}
			avgTime = sum / float64(len(agg.times))
		}

		normTime := avgTime / maxTime
		normMistakes := float64(agg.wrong) / float64(maxMistakes)

		weakness := errorRateWeight*errorRate + normTimeWeight*normTime + normMistakesWeight*normMistakes

		scores = append(scores, &models.TopicScore{
			StudentID:     studentID,
			Subject:       agg.subject,
			Topic:         agg.topic,
			ErrorRate:     roundTo(errorRate, 4),
			AvgTime:       roundTo(avgTime, 2),
			MistakeFreq:   agg.wrong,
			WeaknessScore: roundTo(weakness, 4),
		})
	}

	return scores
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
