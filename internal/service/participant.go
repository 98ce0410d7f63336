package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/pagination"
	"github.com/cloo-solutions/communityos/internal/telemetry"
)

const (
	defaultParticipantPageSize = 50
	maxParticipantPageSize     = 100
)

// ParticipantRepository defines the repository interface for participant persistence
type ParticipantRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	ListAll(ctx context.Context) ([]*domain.Profile, error)
	List(ctx context.Context, filter ParticipantFilter) (*ParticipantPage, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status, availability string) error
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error
	ListIDsMissingEmbedding(ctx context.Context) ([]int64, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Skills(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*DirectoryStats, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}

// EmbeddingJobRepository defines the repository interface for embedding job persistence
type EmbeddingJobRepository interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// ParticipantFilter narrows a directory listing. Zero values match everything.
type ParticipantFilter struct {
	// Name is matched as a case-insensitive substring.
	Name string
	// Skill must be contained in the participant's primary skills.
	Skill  string
	Status domain.Status
	Cursor *pagination.Cursor
	Limit  int
}

// ParticipantPage is one page of a directory listing.
type ParticipantPage struct {
	Participants []*domain.Profile
	NextCursor   string
	HasMore      bool
}

// SkillCount is a skill and how many participants list it.
type SkillCount struct {
	Skill string
	Count int
}

// DirectoryStats summarizes the directory for the dashboard.
type DirectoryStats struct {
	TotalParticipants int
	WithEmbeddings    int
	WithStartups      int
	StatusCounts      map[domain.Status]int
	TopSkills         []SkillCount
}

// ListParticipantsInput is the caller-facing listing request.
type ListParticipantsInput struct {
	Name   string
	Skill  string
	Status string
	Cursor string
	Limit  int
}

// UpdateStatusInput changes a participant's traffic-light status.
type UpdateStatusInput struct {
	ParticipantID int64
	Status        string
	Availability  string
}

// ParticipantService handles directory reads and status updates
type ParticipantService struct {
	repo ParticipantRepository
}

// NewParticipantService creates a new ParticipantService instance
func NewParticipantService(repo ParticipantRepository) *ParticipantService {
	return &ParticipantService{repo: repo}
}

// Get returns one participant or domain.ErrParticipantNotFound.
func (s *ParticipantService) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	if id <= 0 {
		return nil, domain.ErrParticipantNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ParticipantService) List(ctx context.Context, input ListParticipantsInput) (*ParticipantPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "ParticipantService.List", telemetry.SpanAttributes{
		Operation: "list",
		Limit:     input.Limit,
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	filter := ParticipantFilter{
		Name:   strings.TrimSpace(input.Name),
		Skill:  strings.TrimSpace(input.Skill),
		Cursor: cursor,
		Limit:  clampPageSize(input.Limit),
	}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status := domain.ParseStatus(raw)
		if !status.IsValid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	page, err := s.repo.List(ctx, filter)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return page, nil
}

// UpdateStatus sets the participant's status tag and availability note.
func (s *ParticipantService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "ParticipantService.UpdateStatus", telemetry.SpanAttributes{
		ParticipantID: input.ParticipantID,
		Operation:     "update_status",
	})
	defer span.End()

	status := domain.ParseStatus(input.Status)
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, input.ParticipantID, status, strings.TrimSpace(input.Availability)); err != nil {
		span.SetError(err)
		return nil, err
	}
	return s.repo.GetByID(ctx, input.ParticipantID)
}

// Skills returns the sorted, de-duplicated skill vocabulary of the directory.
func (s *ParticipantService) Skills(ctx context.Context) ([]string, error) {
	return s.repo.Skills(ctx)
}

func (s *ParticipantService) Stats(ctx context.Context) (*DirectoryStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "ParticipantService.Stats", telemetry.SpanAttributes{
		Operation: "stats",
	})
	defer span.End()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if stats.StatusCounts == nil {
		stats.StatusCounts = map[domain.Status]int{}
	}
	for _, st := range []domain.Status{domain.StatusGreen, domain.StatusYellow, domain.StatusRed, domain.StatusUnknown} {
		if _, ok := stats.StatusCounts[st]; !ok {
			stats.StatusCounts[st] = 0
		}
	}
	if stats.TopSkills == nil {
		stats.TopSkills = []SkillCount{}
	}
	return stats, nil
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultParticipantPageSize
	}
	if limit > maxParticipantPageSize {
		return maxParticipantPageSize
	}
	return limit
}
