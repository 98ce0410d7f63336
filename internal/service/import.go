package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
	"github.com/google/uuid"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Participants  int
	EmbeddingJobs int
}

// ImportService loads participant profiles into the directory and queues
// their embeddings.
type ImportService struct {
	txRunner TxRunner
	uuidGen  UUIDGenerator
	now      func() time.Time
}

// NewImportService creates a new ImportService instance
func NewImportService(txRunner TxRunner) *ImportService {
	return NewImportServiceWithUUIDGen(txRunner, &DefaultUUIDGenerator{})
}

// NewImportServiceWithUUIDGen creates a new ImportService with a custom UUID generator (for testing)
func NewImportServiceWithUUIDGen(txRunner TxRunner, uuidGen UUIDGenerator) *ImportService {
	return &ImportService{
		txRunner: txRunner,
		uuidGen:  uuidGen,
		now:      time.Now,
	}
}

// Import upserts every profile and enqueues one pending embedding job per
// profile, all in a single transaction.
func (s *ImportService) Import(ctx context.Context, profiles []*domain.Profile) (*ImportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ImportService.Import", telemetry.SpanAttributes{
		Operation: "import",
		Limit:     len(profiles),
	})
	defer span.End()

	for i, p := range profiles {
		if p == nil || p.ID <= 0 {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("profile %d has no id", i))
		}
	}

	result := &ImportResult{}
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		now := s.now().UTC()
		for _, p := range profiles {
			p.Normalize()
			if err := repos.Participants().Upsert(ctx, p); err != nil {
				return fmt.Errorf("failed to upsert participant %d: %w", p.ID, err)
			}
			result.Participants++

			job := &domain.EmbeddingJob{
				ID:            s.uuidGen.NewString(),
				ParticipantID: p.ID,
				Status:        domain.EmbeddingJobStatusPending,
				CreatedAt:     now,
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("failed to queue embedding for participant %d: %w", p.ID, err)
			}
			result.EmbeddingJobs++
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return result, nil
}
