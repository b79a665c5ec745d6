package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/exam-coach/coach-service/internal/models"
)

func seedScores(t *testing.T, repo *mockRepository, studentID string, weaknesses ...float64) {
	t.Helper()
	ctx := context.Background()
	for i, w := range weaknesses {
		err := repo.TopicScore().Upsert(ctx, &models.TopicScore{
			StudentID:     studentID,
			Subject:       "Math",
			Topic:         fmt.Sprintf("Topic %d", i+1),
			ErrorRate:     w,
			AvgTime:       30,
			MistakeFreq:   i + 1,
			WeaknessScore: w,
		})
		if err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}
}

func TestGetAnalysisWeakCohortSizing(t *testing.T) {
	tests := []struct {
		topics   int
		wantWeak int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{5, 3},
		{10, 6},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d topics", tt.topics), func(t *testing.T) {
			repo := newMockRepository()
			svc := NewAnalysisService(repo, testLogger(), nil)

			weaknesses := make([]float64, tt.topics)
			for i := range weaknesses {
				weaknesses[i] = 1 - float64(i)*0.05
			}
			seedScores(t, repo, "stu-1", weaknesses...)

			analysis, err := svc.GetAnalysis(context.Background(), "stu-1")
			if err != nil {
				t.Fatalf("GetAnalysis failed: %v", err)
			}
			if len(analysis.WeakTopics) != tt.wantWeak {
				t.Errorf("expected %d weak topics, got %d", tt.wantWeak, len(analysis.WeakTopics))
			}
			if got := len(analysis.WeakTopics) + len(analysis.StrongTopics); got != tt.topics {
				t.Errorf("partition lost topics: %d != %d", got, tt.topics)
			}
		})
	}
}

func TestGetAnalysisRanksByWeaknessDescending(t *testing.T) {
	repo := newMockRepository()
	svc := NewAnalysisService(repo, testLogger(), nil)
	seedScores(t, repo, "stu-1", 0.3, 0.9, 0.6)

	analysis, err := svc.GetAnalysis(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}

	var all []TopicScoreEntry
	all = append(all, analysis.WeakTopics...)
	all = append(all, analysis.StrongTopics...)

	for i, entry := range all {
		if entry.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", i, i+1, entry.Rank)
		}
		if i > 0 && all[i-1].WeaknessScore < entry.WeaknessScore {
			t.Errorf("ranking not descending at position %d", i)
		}
	}
	if all[0].WeaknessScore != 0.9 {
		t.Errorf("weakest topic should rank first, got score %v", all[0].WeaknessScore)
	}
}

func TestGetAnalysisOverallAccuracy(t *testing.T) {
	repo := newMockRepository()
	svc := NewAnalysisService(repo, testLogger(), nil)
	ctx := context.Background()

	test := &models.MockTest{
		StudentID: "stu-1",
		Results: []models.QuestionResult{
			{Subject: "Math", Topic: "Algebra", IsCorrect: true, TimeTaken: 10},
			{Subject: "Math", Topic: "Algebra", IsCorrect: true, TimeTaken: 20},
			{Subject: "Math", Topic: "Algebra", IsCorrect: false, TimeTaken: 30},
		},
	}
	if err := repo.MockTest().Create(ctx, test); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	analysis, err := svc.GetAnalysis(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if analysis.TotalQuestions != 3 || analysis.TotalCorrect != 2 {
		t.Errorf("expected 2/3 correct, got %d/%d", analysis.TotalCorrect, analysis.TotalQuestions)
	}
	if !almostEqual(analysis.Accuracy, 66.7) {
		t.Errorf("expected accuracy 66.7, got %v", analysis.Accuracy)
	}
}

func TestGetProgressHistory(t *testing.T) {
	repo := newMockRepository()
	svc := NewAnalysisService(repo, testLogger(), nil)
	ctx := context.Background()

	for _, correct := range []bool{false, true} {
		test := &models.MockTest{
			StudentID: "stu-1",
			Results: []models.QuestionResult{
				{Subject: "Math", Topic: "Algebra", IsCorrect: correct, TimeTaken: 40},
				{Subject: "Math", Topic: "Algebra", IsCorrect: true, TimeTaken: 20},
			},
		}
		if err := repo.MockTest().Create(ctx, test); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	progress, err := svc.GetProgress(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if len(progress.History) != 2 {
		t.Fatalf("expected 2 history points, got %d", len(progress.History))
	}

	first, second := progress.History[0], progress.History[1]
	if first.TestNumber != 1 || second.TestNumber != 2 {
		t.Errorf("test numbers out of order: %d, %d", first.TestNumber, second.TestNumber)
	}
	if !almostEqual(first.Accuracy, 50) || !almostEqual(second.Accuracy, 100) {
		t.Errorf("unexpected accuracy history: %v, %v", first.Accuracy, second.Accuracy)
	}
	if !almostEqual(first.AvgTime, 30) {
		t.Errorf("expected avg time 30, got %v", first.AvgTime)
	}
}

func TestExportAnalysisWritesWorkbook(t *testing.T) {
	repo := newMockRepository()
	svc := NewAnalysisService(repo, testLogger(), nil)
	seedScores(t, repo, "stu-1", 0.8, 0.4)

	data, err := svc.ExportAnalysis(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("ExportAnalysis failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Weakness Report")
	if err != nil {
		t.Fatalf("failed to read report sheet: %v", err)
	}
	// Header plus one row per topic.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][7] != "Cohort" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][7] != "weak" {
		t.Errorf("weakest topic should be in the weak cohort, got %q", rows[1][7])
	}
}
