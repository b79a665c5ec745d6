package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/exam-coach/coach-service/internal/llm"
	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

const (
	planTopicCap = 8 // weak topics embedded in the study-plan prompt
	recTopicCap  = 6 // topics covered by one recommendation set

	// avg_time threshold separating slow-recall from careless-error framing
	slowRecallThreshold = 60.0
)

type generationService struct {
	repo   repositories.Repository
	logger *slog.Logger
	llm    llm.Provider
}

// NewGenerationService creates the content generator. A nil provider
// disables the generative path entirely; every request then uses the
// deterministic templates.
func NewGenerationService(repo repositories.Repository, logger *slog.Logger, provider llm.Provider) GenerationService {
	return &generationService{
		repo:   repo,
		logger: logger,
		llm:    provider,
	}
}

// ===== STUDY PLAN =====

func (s *generationService) GenerateStudyPlan(ctx context.Context, studentID string) (*StudyPlanResponse, error) {
	weak, err := s.weakTopics(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}

	days := s.planDays(ctx, weak)

	payload, err := json.Marshal(struct {
		Days []StudyPlanDay `json:"days"`
	}{Days: days})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize study plan: %w", err)
	}

	plan := &models.StudyPlan{
		StudentID: studentID,
		Plan:      payload,
	}
	if err := s.repo.StudyPlan().Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store study plan: %w", err)
	}

	s.logger.Info("Study plan generated",
		"student_id", studentID,
		"weak_topics", len(weak))

	return &StudyPlanResponse{
		StudentID: studentID,
		CreatedAt: plan.CreatedAt,
		Days:      days,
	}, nil
}

func (s *generationService) GetLatestStudyPlan(ctx context.Context, studentID string) (*StudyPlanResponse, error) {
	plan, err := s.repo.StudyPlan().GetLatest(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// No plan yet is a valid default state, not an error.
			return &StudyPlanResponse{
				StudentID: studentID,
				CreatedAt: time.Now().UTC(),
				Days:      []StudyPlanDay{},
			}, nil
		}
		return nil, err
	}

	var parsed struct {
		Days []StudyPlanDay `json:"days"`
	}
	if err := json.Unmarshal(plan.Plan, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode stored study plan: %w", err)
	}

	return &StudyPlanResponse{
		StudentID: studentID,
		CreatedAt: plan.CreatedAt,
		Days:      parsed.Days,
	}, nil
}

// planDays tries the generative path once and falls back to the template on
// any failure. Generation failures never surface to the caller.
func (s *generationService) planDays(ctx context.Context, weak []WeakTopic) []StudyPlanDay {
	if s.llm != nil {
		system, user := buildStudyPlanPrompt(weak)
		raw, err := s.llm.Complete(ctx, system, user)
		if err != nil {
			s.logger.Warn("Study plan generation failed, using template", "error", err)
		} else {
			var parsed struct {
				Days []StudyPlanDay `json:"days"`
			}
			if err := json.Unmarshal([]byte(llm.CleanResponse(raw)), &parsed); err != nil || len(parsed.Days) == 0 {
				s.logger.Warn("Unparsable study plan response, using template", "error", err)
			} else {
				return parsed.Days
			}
		}
	}

	return fallbackPlanDays(weak)
}

func buildStudyPlanPrompt(weak []WeakTopic) (system, user string) {
	system = "You are an expert entrance exam coach. " +
		"Respond ONLY with a valid JSON object, no markdown, no extra text. " +
		`The JSON must look like: {"days": [{"day": 1, "date_label": "Day 1", ` +
		`"focus": "Topic name", "duration_hours": 2, "practice_questions": 20, ` +
		`"revision_blocks": ["Block 1","Block 2"], "tip": "Motivating tip."}]}`

	user = fmt.Sprintf(
		"Create a 7-day personalised study plan for a student with these weak topics:\n%s\n"+
			"Prioritise weaker topics more. Make the plan motivational, specific, and actionable. "+
			"Return ONLY valid JSON, no markdown fences.",
		topicSummary(weak, planTopicCap, true))
	return system, user
}

// fallbackPlanDays builds the 7-day plan purely from arithmetic over the
// weak-topic list, cycling through it when it has fewer than 7 entries.
func fallbackPlanDays(weak []WeakTopic) []StudyPlanDay {
	top := weak
	if len(top) > 7 {
		top = top[:7]
	}
	if len(top) == 0 {
		top = []WeakTopic{{Subject: "All", Topic: "General Revision", WeaknessScore: 0.5}}
	}

	days := make([]StudyPlanDay, 0, 7)
	for i := 0; i < 7; i++ {
		t := top[i%len(top)]
		days = append(days, StudyPlanDay{
			Day:               i + 1,
			DateLabel:         fmt.Sprintf("Day %d", i+1),
			Focus:             t.Topic,
			DurationHours:     roundTo(1.5+t.WeaknessScore*2.5, 1),
			PracticeQuestions: int(15 + t.WeaknessScore*25),
			RevisionBlocks: []string{
				fmt.Sprintf("Concept review: %s", t.Topic),
				"Solve practice problems",
				"Timed mini-test (10 questions)",
				"Review mistakes & notes",
			},
			Tip: fmt.Sprintf("Focus on understanding the fundamentals of %s. "+
				"Each mistake is a step closer to mastery!", t.Topic),
		})
	}
	return days
}

// ===== RECOMMENDATIONS =====

func (s *generationService) GenerateRecommendations(ctx context.Context, studentID string) (*RecommendationsResponse, error) {
	weak, err := s.weakTopics(ctx, studentID, recTopicCap)
	if err != nil {
		return nil, err
	}

	recs := s.recommendations(ctx, weak)

	payload, err := json.Marshal(struct {
		Recommendations []TopicRecommendation `json:"recommendations"`
	}{Recommendations: recs})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize recommendations: %w", err)
	}

	rec := &models.Recommendation{
		StudentID: studentID,
		Recs:      payload,
	}
	if err := s.repo.Recommendation().Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store recommendations: %w", err)
	}

	s.logger.Info("Recommendations generated",
		"student_id", studentID,
		"topics", len(recs))

	return &RecommendationsResponse{
		StudentID:       studentID,
		CreatedAt:       rec.CreatedAt,
		Recommendations: recs,
	}, nil
}

func (s *generationService) GetLatestRecommendations(ctx context.Context, studentID string) (*RecommendationsResponse, error) {
	rec, err := s.repo.Recommendation().GetLatest(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &RecommendationsResponse{
				StudentID:       studentID,
				CreatedAt:       time.Now().UTC(),
				Recommendations: []TopicRecommendation{},
			}, nil
		}
		return nil, err
	}

	var parsed struct {
		Recommendations []TopicRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(rec.Recs, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode stored recommendations: %w", err)
	}

	return &RecommendationsResponse{
		StudentID:       studentID,
		CreatedAt:       rec.CreatedAt,
		Recommendations: parsed.Recommendations,
	}, nil
}

func (s *generationService) recommendations(ctx context.Context, weak []WeakTopic) []TopicRecommendation {
	if s.llm != nil {
		system, user := buildRecommendationsPrompt(weak)
		raw, err := s.llm.Complete(ctx, system, user)
		if err != nil {
			s.logger.Warn("Recommendation generation failed, using template", "error", err)
		} else {
			var parsed struct {
				Recommendations []TopicRecommendation `json:"recommendations"`
			}
			if err := json.Unmarshal([]byte(llm.CleanResponse(raw)), &parsed); err != nil || len(parsed.Recommendations) == 0 {
				s.logger.Warn("Unparsable recommendations response, using template", "error", err)
			} else {
				return parsed.Recommendations
			}
		}
	}

	return fallbackRecommendations(weak)
}

func buildRecommendationsPrompt(weak []WeakTopic) (system, user string) {
	system = "You are an expert entrance exam coach. " +
		"Respond ONLY with valid JSON, no markdown fences. " +
		`Format: {"recommendations": [{"topic": "...", "subject": "...", ` +
		`"why_weak": "...", "concept_revision": ["..."], ` +
		`"practice_exercises": ["..."], "mock_tests": ["..."], ` +
		`"resources": [{"type": "youtube|article", "title": "...", "url": "..."}], ` +
		`"improvement_tip": "..."}]}`

	user = fmt.Sprintf(
		"Generate study material recommendations for these weak topics:\n%s\n"+
			"For each topic, explain why it might be weak and give specific, actionable resources. "+
			"Return ONLY valid JSON.",
		topicSummary(weak, recTopicCap, false))
	return system, user
}

// fallbackRecommendations derives the recommendation set from the topic
// metrics alone. The why-weak framing branches on average response time:
// slow answers point at recall speed, fast wrong answers at carelessness.
func fallbackRecommendations(weak []WeakTopic) []TopicRecommendation {
	if len(weak) > recTopicCap {
		weak = weak[:recTopicCap]
	}

	recs := make([]TopicRecommendation, 0, len(weak))
	for _, t := range weak {
		framing := "careless errors — review fundamentals."
		if t.AvgTime > slowRecallThreshold {
			framing = "slow recall — practice timed drills."
		}

		searchTerm := strings.ReplaceAll(t.Topic, " ", "+")

		recs = append(recs, TopicRecommendation{
			Topic:   t.Topic,
			Subject: t.Subject,
			WhyWeak: fmt.Sprintf(
				"You answered %.0f%% of %s questions incorrectly. Average time taken was %.1fs, indicating %s",
				t.ErrorRate*100, t.Topic, t.AvgTime, framing),
			ConceptRevision: []string{
				fmt.Sprintf("Re-read the %s chapter from your standard textbook", t.Topic),
				fmt.Sprintf("Summarise key formulas and theorems for %s", t.Topic),
				"Create flashcards for important concepts",
			},
			PracticeExercises: []string{
				fmt.Sprintf("Solve 30 previous year questions on %s", t.Topic),
				fmt.Sprintf("Complete 2 topic-wise tests on %s", t.Topic),
				"Attempt mixed difficulty questions (easy to hard)",
			},
			MockTests: []string{
				fmt.Sprintf("Take a 20-question timed mini-test on %s", t.Topic),
				"Include this topic in the next full-length mock exam",
			},
			Resources: []ResourceLink{
				{
					Type:  "youtube",
					Title: fmt.Sprintf("%s — Full Concept Revision", t.Topic),
					URL:   fmt.Sprintf("https://www.youtube.com/results?search_query=%s+entrance+exam", searchTerm),
				},
				{
					Type:  "article",
					Title: fmt.Sprintf("%s — Notes & Formulas", t.Topic),
					URL:   fmt.Sprintf("https://www.google.com/search?q=%s+entrance+exam+notes", searchTerm),
				},
			},
			ImprovementTip: fmt.Sprintf(
				"Break %s into sub-topics. Master one sub-topic per day "+
					"and link concepts together to build lasting understanding.", t.Topic),
		})
	}
	return recs
}

// ===== SHARED HELPERS =====

// weakTopics loads the student's topics ranked by weakness, capped at limit
// when limit > 0.
func (s *generationService) weakTopics(ctx context.Context, studentID string, limit int) ([]WeakTopic, error) {
	scores, err := s.repo.TopicScore().GetTop(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic scores: %w", err)
	}

	weak := make([]WeakTopic, 0, len(scores))
	for _, sc := range scores {
		weak = append(weak, WeakTopic{
			Subject:       sc.Subject,
			Topic:         sc.Topic,
			WeaknessScore: sc.WeaknessScore,
			ErrorRate:     sc.ErrorRate,
			AvgTime:       sc.AvgTime,
			MistakeFreq:   sc.MistakeFreq,
		})
	}
	return weak, nil
}

// topicSummary renders the weak-topic list for prompt embedding, capped to
// bound prompt size.
func topicSummary(weak []WeakTopic, limit int, includeWeakness bool) string {
	if len(weak) > limit {
		weak = weak[:limit]
	}

	lines := make([]string, 0, len(weak))
	for _, t := range weak {
		if includeWeakness {
			lines = append(lines, fmt.Sprintf("- %s (%s): weakness=%.2f, error_rate=%.0f%%",
				t.Topic, t.Subject, t.WeaknessScore, t.ErrorRate*100))
		} else {
			lines = append(lines, fmt.Sprintf("- %s (%s): error_rate=%.0f%%",
				t.Topic, t.Subject, t.ErrorRate*100))
		}
	}
	return strings.Join(lines, "\n")
}
