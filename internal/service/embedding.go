package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
)

// EmbeddingParticipantRepository defines the repository interface for embedding operations
type EmbeddingParticipantRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error
}

// EmbeddingService handles embedding generation for participant profiles
type EmbeddingService struct {
	client EmbeddingClient
	repo   EmbeddingParticipantRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingParticipantRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// GenerateEmbedding generates and stores an embedding for the given participant ID
// This method is called by the background worker and the embed command
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, participantID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.GenerateEmbedding", telemetry.SpanAttributes{
		ParticipantID: participantID,
		Operation:     "embed",
	})
	defer span.End()

	profile, err := s.repo.GetByID(ctx, participantID)
	if err != nil {
		return err
	}

	text := BuildSearchableText(profile)
	if text == "" {
		return domain.ErrEmptySearchableText
	}

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, participantID, embedding); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}

// BuildSearchableText flattens a profile into the text that gets embedded.
func BuildSearchableText(p *domain.Profile) string {
	var parts []string

	add := func(label, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			parts = append(parts, label+value)
		}
	}
	addList := func(label string, values []string) {
		if len(values) > 0 {
			parts = append(parts, label+strings.Join(values, ", "))
		}
	}

	add("", p.Bio)
	addList("Skills: ", p.Skills)
	add("Can help with: ", p.CanHelp)
	add("Needs help with: ", p.NeedsHelp)
	add("AI usage: ", p.AIUsage)
	addList("Looking for: ", p.LookingFor)
	if p.HasStartup && p.StartupName != "" {
		startup := "Startup: " + p.StartupName
		if p.StartupDescription != "" {
			startup += " - " + p.StartupDescription
		}
		parts = append(parts, startup)
	}
	add("", p.EnhancedBio)
	addList("Additional skills: ", p.ParsedSkills)
	addList("Interests: ", p.Interests)
	addList("Tags: ", p.Tags)

	return strings.Join(parts, "\n\n")
}
