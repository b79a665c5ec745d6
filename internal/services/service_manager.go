package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/exam-coach/coach-service/internal/cache"
	"github.com/exam-coach/coach-service/internal/events"
	"github.com/exam-coach/coach-service/internal/llm"
	"github.com/exam-coach/coach-service/internal/repositories"
	"github.com/exam-coach/coach-service/internal/validator"
)

type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher

	scoring    ScoringService
	analysis   AnalysisService
	generation GenerationService

	mu          sync.RWMutex
	initialized bool
	shutdown    bool
}

// NewServiceManager wires the service layer. publisher and cacheManager may
// be nil; provider may be nil to disable generative content.
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	provider llm.Provider,
	publisher events.EventPublisher,
	cacheManager *cache.CacheManager,
) ServiceManager {
	return &serviceManager{
		repo:       repo,
		logger:     logger,
		publisher:  publisher,
		scoring:    NewScoringService(repo, logger, v, publisher, cacheManager),
		analysis:   NewAnalysisService(repo, logger, cacheManager),
		generation: NewGenerationService(repo, logger, provider),
	}
}

func (m *serviceManager) Scoring() ScoringService       { return m.scoring }
func (m *serviceManager) Analysis() AnalysisService     { return m.analysis }
func (m *serviceManager) Generation() GenerationService { return m.generation }

func (m *serviceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("service manager already initialized")
	}
	if m.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}

	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	m.initialized = true
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if m.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}

	return m.repo.Ping(ctx)
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}
	m.shutdown = true

	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	m.logger.Info("Service manager shut down")
	return nil
}
