package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/pipeline"
)

// WorkerPoolProcessingService implements pipeline.ProcessingService on top of
// a bounded worker pool so concurrent Kafka deliveries cannot fan out into
// unbounded pipeline runs.
type WorkerPoolProcessingService struct {
	baseService pipeline.ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects the in-flight email id set
	mu       sync.Mutex
	inFlight map[string]struct{}
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	baseService pipeline.ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		inFlight:    make(map[string]struct{}),
	}, nil
}

// ProcessFinancialEmail submits the email to the worker pool and waits for
// its result. A pool submission failure is folded into the result, keeping
// the never-fails contract.
func (s *WorkerPoolProcessingService) ProcessFinancialEmail(ctx context.Context, userID uuid.UUID, payload *shared.EmailPayload) *shared.ProcessResult {
	logger := s.logger
	if payload.CorrelationID != "" {
		logger = s.logger.With("correlation_id", payload.CorrelationID)
	}

	logger.Info("Submitting email to worker pool",
		"email_id", payload.EmailID,
		"user_id", userID.String(),
	)

	resultChan := make(chan *shared.ProcessResult, 1)

	s.track(payload.EmailID)
	err := s.pool.Submit(func() {
		defer s.untrack(payload.EmailID)
		resultChan <- s.baseService.ProcessFinancialEmail(ctx, userID, payload)
	})
	if err != nil {
		s.untrack(payload.EmailID)
		logger.Error("Failed to submit email to worker pool",
			"email_id", payload.EmailID,
			"error", err,
		)
		return &shared.ProcessResult{Error: fmt.Sprintf("worker pool submission failed: %v", err)}
	}

	return <-resultChan
}

// UpdateFinancialEmail runs the update path through the same pool.
func (s *WorkerPoolProcessingService) UpdateFinancialEmail(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) *shared.UpdateResult {
	logger := s.logger
	if payload.CorrelationID != "" {
		logger = s.logger.With("correlation_id", payload.CorrelationID)
	}

	logger.Info("Submitting asset update to worker pool",
		"asset_id", assetID.String(),
		"email_id", payload.EmailID,
	)

	resultChan := make(chan *shared.UpdateResult, 1)

	s.track(payload.EmailID)
	err := s.pool.Submit(func() {
		defer s.untrack(payload.EmailID)
		resultChan <- s.baseService.UpdateFinancialEmail(ctx, userID, assetID, payload)
	})
	if err != nil {
		s.untrack(payload.EmailID)
		logger.Error("Failed to submit asset update to worker pool",
			"asset_id", assetID.String(),
			"error", err,
		)
		return &shared.UpdateResult{Error: fmt.Sprintf("worker pool submission failed: %v", err)}
	}

	return <-resultChan
}

func (s *WorkerPoolProcessingService) track(id string) {
	s.mu.Lock()
	s.inFlight[id] = struct{}{}
	s.mu.Unlock()
}

func (s *WorkerPoolProcessingService) untrack(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// InFlight returns the number of emails currently being processed.
func (s *WorkerPoolProcessingService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool",
		"running_workers", s.pool.Running(),
		"in_flight", s.InFlight(),
	)
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
