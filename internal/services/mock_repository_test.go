package services

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/exam-coach/coach-service/internal/models"
	"github.com/exam-coach/coach-service/internal/repositories"
)

// mockRepository is an in-memory Repository backing the service tests. It
// mirrors the ordering guarantees the postgres implementation documents:
// weakness descending for scores, created_at descending for latest fetches.
type mockRepository struct {
	students map[string]*models.Student
	tests    []*models.MockTest
	scores   map[string]*models.TopicScore // keyed by student|subject|topic
	plans    []*models.StudyPlan
	recs     []*models.Recommendation

	nextTestID uint
	nextPlanID uint
	nextRecID  uint

	pingErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		students: make(map[string]*models.Student),
		scores:   make(map[string]*models.TopicScore),
	}
}

func (m *mockRepository) Student() repositories.StudentRepository           { return (*mockStudentRepo)(m) }
func (m *mockRepository) MockTest() repositories.MockTestRepository         { return (*mockTestRepo)(m) }
func (m *mockRepository) TopicScore() repositories.TopicScoreRepository     { return (*mockScoreRepo)(m) }
func (m *mockRepository) StudyPlan() repositories.StudyPlanRepository       { return (*mockPlanRepo)(m) }
func (m *mockRepository) Recommendation() repositories.RecommendationRepository {
	return (*mockRecRepo)(m)
}

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return m.pingErr }
func (m *mockRepository) Close() error                   { return nil }

func scoreKey(studentID, subject, topic string) string {
	return studentID + "|" + subject + "|" + topic
}

// ===== students =====

type mockStudentRepo mockRepository

func (m *mockStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockStudentRepo) EnsureExists(ctx context.Context, id, name string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	s := &models.Student{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	m.students[id] = s
	return s, nil
}

// ===== mock tests =====

type mockTestRepo mockRepository

func (m *mockTestRepo) Create(ctx context.Context, test *models.MockTest) error {
	m.nextTestID++
	test.ID = m.nextTestID
	if test.SubmittedAt.IsZero() {
		test.SubmittedAt = time.Now().UTC()
	}
	for i := range test.Results {
		test.Results[i].MockTestID = test.ID
	}
	m.tests = append(m.tests, test)
	return nil
}

func (m *mockTestRepo) GetByStudent(ctx context.Context, studentID string) ([]*models.MockTest, error) {
	var out []*models.MockTest
	for _, t := range m.tests {
		if t.StudentID == studentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTestRepo) GetResultsByStudent(ctx context.Context, studentID string) ([]*models.QuestionResult, error) {
	var out []*models.QuestionResult
	for _, t := range m.tests {
		if t.StudentID != studentID {
			continue
		}
		for i := range t.Results {
			out = append(out, &t.Results[i])
		}
	}
	return out, nil
}

// ===== topic scores =====

type mockScoreRepo mockRepository

func (m *mockScoreRepo) Upsert(ctx context.Context, score *models.TopicScore) error {
	key := scoreKey(score.StudentID, score.Subject, score.Topic)
	if existing, ok := m.scores[key]; ok {
		score.ID = existing.ID
		score.CreatedAt = existing.CreatedAt
	} else {
		score.ID = uint(len(m.scores) + 1)
		score.CreatedAt = time.Now().UTC()
	}
	score.UpdatedAt = time.Now().UTC()
	m.scores[key] = score
	return nil
}

func (m *mockScoreRepo) GetByStudent(ctx context.Context, studentID string) ([]*models.TopicScore, error) {
	var out []*models.TopicScore
	for _, sc := range m.scores {
		if sc.StudentID == studentID {
			out = append(out, sc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeaknessScore != out[j].WeaknessScore {
			return out[i].WeaknessScore > out[j].WeaknessScore
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockScoreRepo) GetTop(ctx context.Context, studentID string, limit int) ([]*models.TopicScore, error) {
	out, err := m.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ===== study plans =====

type mockPlanRepo mockRepository

func (m *mockPlanRepo) Create(ctx context.Context, plan *models.StudyPlan) error {
	m.nextPlanID++
	plan.ID = m.nextPlanID
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	m.plans = append(m.plans, plan)
	return nil
}

func (m *mockPlanRepo) GetLatest(ctx context.Context, studentID string) (*models.StudyPlan, error) {
	var latest *models.StudyPlan
	for _, p := range m.plans {
		if p.StudentID != studentID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

// ===== recommendations =====

type mockRecRepo mockRepository

func (m *mockRecRepo) Create(ctx context.Context, rec *models.Recommendation) error {
	m.nextRecID++
	rec.ID = m.nextRecID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *mockRecRepo) GetLatest(ctx context.Context, studentID string) (*models.Recommendation, error) {
	var latest *models.Recommendation
	for _, r := range m.recs {
		if r.StudentID != studentID {
			continue
		}
		if latest == nil || r.ID > latest.ID {
			latest = r
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

// testLogger discards output unless tests are run with -v and TEST_LOG set.
func testLogger() *slog.Logger {
	if os.Getenv("TEST_LOG") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}
