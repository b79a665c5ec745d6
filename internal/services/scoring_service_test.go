package services

import (
	"context"
	"math"
	"testing"

	"github.com/exam-coach/coach-service/internal/events"
	"github.com/exam-coach/coach-service/internal/validator"
)

func newScoringFixture() (ScoringService, *mockRepository, *events.MockEventPublisher) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewScoringService(repo, testLogger(), validator.New(), publisher, nil)
	return svc, repo, publisher
}

func question(subject, topic, id, student, correct string, timeTaken float64) QuestionResultRequest {
	return QuestionResultRequest{
		Subject:       subject,
		Topic:         topic,
		QuestionID:    id,
		StudentAnswer: student,
		CorrectAnswer: correct,
		TimeTaken:     timeTaken,
	}
}

// twoTopicSubmission builds a 15-question test: 10 Algebra questions with 6
// correct at 40s each, 5 Geometry questions with 1 correct at 90s each.
func twoTopicSubmission() *SubmitTestRequest {
	req := &SubmitTestRequest{}
	for i := 0; i < 10; i++ {
		answer := "A"
		if i >= 6 {
			answer = "B"
		}
		req.Questions = append(req.Questions,
			question("Math", "Algebra", "alg", answer, "A", 40))
	}
	for i := 0; i < 5; i++ {
		answer := "A"
		if i >= 1 {
			answer = "B"
		}
		req.Questions = append(req.Questions,
			question("Math", "Geometry", "geo", answer, "A", 90))
	}
	return req
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSubmitTestComputesWeaknessScores(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	resp, err := svc.SubmitTest(ctx, "stu-1", twoTopicSubmission())
	if err != nil {
		t.Fatalf("SubmitTest failed: %v", err)
	}

	if resp.TotalQuestions != 15 || resp.Correct != 7 {
		t.Errorf("expected 7/15 correct, got %d/%d", resp.Correct, resp.TotalQuestions)
	}
	if !almostEqual(resp.Accuracy, 46.7) {
		t.Errorf("expected accuracy 46.7, got %v", resp.Accuracy)
	}

	scores, err := repo.TopicScore().GetByStudent(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetByStudent failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 topic scores, got %d", len(scores))
	}

	// Geometry is weaker and must rank first.
	geo, alg := scores[0], scores[1]
	if geo.Topic != "Geometry" || alg.Topic != "Algebra" {
		t.Fatalf("unexpected ranking: %s, %s", scores[0].Topic, scores[1].Topic)
	}

	// Geometry: error 0.8, norm_time 90/90, norm_mistakes 4/4.
	if !almostEqual(geo.WeaknessScore, 0.88) {
		t.Errorf("geometry weakness: expected 0.88, got %v", geo.WeaknessScore)
	}
	if !almostEqual(geo.ErrorRate, 0.8) || !almostEqual(geo.AvgTime, 90) || geo.MistakeFreq != 4 {
		t.Errorf("geometry metrics: %v %v %d", geo.ErrorRate, geo.AvgTime, geo.MistakeFreq)
	}

	// Algebra: 0.6*0.4 + 0.2*(40/90) + 0.2*(4/4) = 0.5289 after rounding.
	if !almostEqual(alg.WeaknessScore, 0.5289) {
		t.Errorf("algebra weakness: expected 0.5289, got %v", alg.WeaknessScore)
	}
	if !almostEqual(alg.ErrorRate, 0.4) || !almostEqual(alg.AvgTime, 40) || alg.MistakeFreq != 4 {
		t.Errorf("algebra metrics: %v %v %d", alg.ErrorRate, alg.AvgTime, alg.MistakeFreq)
	}
}

func TestRecomputeScoresIsIdempotent(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	if _, err := svc.SubmitTest(ctx, "stu-1", twoTopicSubmission()); err != nil {
		t.Fatalf("SubmitTest failed: %v", err)
	}

	before, _ := repo.TopicScore().GetByStudent(ctx, "stu-1")

	if err := svc.RecomputeScores(ctx, "stu-1"); err != nil {
		t.Fatalf("RecomputeScores failed: %v", err)
	}

	after, _ := repo.TopicScore().GetByStudent(ctx, "stu-1")
	if len(before) != len(after) {
		t.Fatalf("score count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].WeaknessScore != after[i].WeaknessScore ||
			before[i].ErrorRate != after[i].ErrorRate ||
			before[i].MistakeFreq != after[i].MistakeFreq {
			t.Errorf("score for %s changed on recompute", before[i].Topic)
		}
	}
}

func TestRecomputeScoresNoHistoryIsNoop(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	if err := svc.RecomputeScores(ctx, "ghost"); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}

	scores, _ := repo.TopicScore().GetByStudent(ctx, "ghost")
	if len(scores) != 0 {
		t.Errorf("expected no scores, got %d", len(scores))
	}
}

func TestSubmitTestRejectsInvalidPayloads(t *testing.T) {
	svc, _, _ := newScoringFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *SubmitTestRequest
	}{
		{"empty questions", &SubmitTestRequest{}},
		{"negative time", &SubmitTestRequest{Questions: []QuestionResultRequest{
			question("Math", "Algebra", "q1", "A", "A", -5),
		}}},
		{"blank subject", &SubmitTestRequest{Questions: []QuestionResultRequest{
			question("", "Algebra", "q1", "A", "A", 10),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitTest(ctx, "stu-1", tt.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !IsValidationError(err) {
				t.Errorf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestGradingIsCaseAndSpaceInsensitive(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	req := &SubmitTestRequest{Questions: []QuestionResultRequest{
		question("Math", "Algebra", "q1", "  paris ", "Paris", 10),
		question("Math", "Algebra", "q2", "LONDON", "london", 10),
		question("Math", "Algebra", "q3", "Berlin", "Madrid", 10),
	}}

	resp, err := svc.SubmitTest(ctx, "stu-1", req)
	if err != nil {
		t.Fatalf("SubmitTest failed: %v", err)
	}
	if resp.Correct != 2 {
		t.Errorf("expected 2 correct, got %d", resp.Correct)
	}

	results, _ := repo.MockTest().GetResultsByStudent(ctx, "stu-1")
	if !results[0].IsCorrect || !results[1].IsCorrect || results[2].IsCorrect {
		t.Error("stored correctness flags do not match grading rule")
	}
}

func TestSubmitTestAutoProvisionsStudent(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	if _, err := svc.SubmitTest(ctx, "new-student", twoTopicSubmission()); err != nil {
		t.Fatalf("SubmitTest failed: %v", err)
	}

	if _, err := repo.Student().GetByID(ctx, "new-student"); err != nil {
		t.Errorf("student was not provisioned: %v", err)
	}
}

func TestSubmitTestPublishesEvents(t *testing.T) {
	svc, _, publisher := newScoringFixture()
	ctx := context.Background()

	if _, err := svc.SubmitTest(ctx, "stu-1", twoTopicSubmission()); err != nil {
		t.Fatalf("SubmitTest failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Type != events.TopicTestSubmitted || published[1].Type != events.TopicScoresUpdated {
		t.Errorf("unexpected event types: %s, %s", published[0].Type, published[1].Type)
	}
	if published[0].StudentID != "stu-1" {
		t.Errorf("unexpected student on event: %s", published[0].StudentID)
	}
}

func TestSubmissionHistoryAccumulatesAcrossTests(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	ctx := context.Background()

	first := &SubmitTestRequest{Questions: []QuestionResultRequest{
		question("Math", "Algebra", "q1", "A", "A", 30),
		question("Math", "Algebra", "q2", "B", "A", 30),
	}}
	second := &SubmitTestRequest{Questions: []QuestionResultRequest{
		question("Math", "Algebra", "q3", "A", "A", 30),
		question("Math", "Algebra", "q4", "A", "A", 30),
	}}

	if _, err := svc.SubmitTest(ctx, "stu-1", first); err != nil {
		t.Fatalf("first SubmitTest failed: %v", err)
	}
	if _, err := svc.SubmitTest(ctx, "stu-1", second); err != nil {
		t.Fatalf("second SubmitTest failed: %v", err)
	}

	scores, _ := repo.TopicScore().GetByStudent(ctx, "stu-1")
	if len(scores) != 1 {
		t.Fatalf("expected a single Algebra score, got %d", len(scores))
	}
	// 1 wrong out of 4 across both tests.
	if !almostEqual(scores[0].ErrorRate, 0.25) {
		t.Errorf("expected error rate 0.25 over full history, got %v", scores[0].ErrorRate)
	}
	if scores[0].MistakeFreq != 1 {
		t.Errorf("expected 1 mistake over full history, got %d", scores[0].MistakeFreq)
	}
}
