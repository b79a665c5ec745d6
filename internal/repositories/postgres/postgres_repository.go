package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/exam-coach/coach-service/internal/cache"
	"github.com/exam-coach/coach-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	student        repositories.StudentRepository
	mockTest       repositories.MockTestRepository
	topicScore     repositories.TopicScoreRepository
	studyPlan      repositories.StudyPlanRepository
	recommendation repositories.RecommendationRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a repository with all sub-repositories wired.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.student = NewStudentPostgreSQL(config.DB)
	repo.mockTest = NewMockTestPostgreSQL(config.DB)
	repo.topicScore = NewTopicScorePostgreSQL(config.DB)
	repo.studyPlan = NewStudyPlanPostgreSQL(config.DB)
	repo.recommendation = NewRecommendationPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Student() repositories.StudentRepository {
	return r.student
}

func (r *PostgreSQLRepository) MockTest() repositories.MockTestRepository {
	return r.mockTest
}

func (r *PostgreSQLRepository) TopicScore() repositories.TopicScoreRepository {
	return r.topicScore
}

func (r *PostgreSQLRepository) StudyPlan() repositories.StudyPlanRepository {
	return r.studyPlan
}

func (r *PostgreSQLRepository) Recommendation() repositories.RecommendationRepository {
	return r.recommendation
}

// WithTransaction runs fn with a Repository whose sub-repositories share one
// database transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:             tx,
			redisClient:    r.redisClient,
			cacheManager:   r.cacheManager,
			student:        NewStudentPostgreSQL(tx),
			mockTest:       NewMockTestPostgreSQL(tx),
			topicScore:     NewTopicScorePostgreSQL(tx),
			studyPlan:      NewStudyPlanPostgreSQL(tx),
			recommendation: NewRecommendationPostgreSQL(tx),
		}
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(pingCtx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// RepositoryManagerImpl manages repository lifecycle.
type RepositoryManagerImpl struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager.
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManagerImpl{config: config}
}

func (rm *RepositoryManagerImpl) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManagerImpl) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManagerImpl) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManagerImpl) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
