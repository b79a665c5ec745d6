package repositories

import "context"

// Repository aggregates all entity repositories behind one interface.
type Repository interface {
	Student() StudentRepository
	MockTest() MockTestRepository
	TopicScore() TopicScoreRepository
	StudyPlan() StudyPlanRepository
	Recommendation() RecommendationRepository

	// WithTransaction runs fn against a Repository bound to a single
	// database transaction. If fn returns an error, all writes made
	// through that Repository are rolled back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
