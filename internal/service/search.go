package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	maxQueryLength          = 500
	defaultSearchLimit      = 10
	maxSearchLimit          = 20
	defaultMatchThreshold   = 0.3
	retrievalThresholdDelta = 0.1
	minRetrievalThreshold   = 0.1
	retrievalOverfetch      = 5

	noResultsExplanation = "No participants matched your query. Try different keywords or broaden your search."
)

// EmbeddingClient generates embedding vectors for text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ProfileRetriever finds participants by vector similarity.
type ProfileRetriever interface {
	HasEmbeddings(ctx context.Context) (bool, error)
	RetrieveSimilar(ctx context.Context, embedding []float32, limit int, threshold float64) ([]ScoredProfile, error)
}

// Explainer summarizes why a set of participants answers a query.
// Implementations must only mention the participants they are given.
type Explainer interface {
	Explain(ctx context.Context, query string, profiles []*domain.Profile) (*domain.Completion, error)
}

// SearchInput is a natural-language participant search request.
type SearchInput struct {
	Query              string
	Limit              int
	ExcludeUnavailable bool
	// MatchThreshold defaults to 0.3 when nil.
	MatchThreshold *float64
	IncludeDebug   bool
}

// SearchMetadata describes a completed search.
type SearchMetadata struct {
	TotalMatches  int
	ReturnedCount int
	SearchTimeMs  int64
	Query         string
}

// SearchDebug carries per-stage diagnostics when requested.
type SearchDebug struct {
	EmbeddingModel            string
	EmbeddingGenerationTimeMs int64
	VectorSearchTimeMs        int64
	SimilarityScores          []float64
	RerankScores              []float64
	LLMModel                  string
	LLMTokensUsed             int
	LLMGenerationTimeMs       int64
}

// SearchOutput is the assembled search result.
type SearchOutput struct {
	Explanation string
	Matches     []SearchMatch
	Metadata    SearchMetadata
	Debug       *SearchDebug
}

// SearchServiceConfig controls search service behavior.
type SearchServiceConfig struct {
	EmbeddingModel string
	Logger         logrus.FieldLogger
}

// DefaultSearchServiceConfig returns the default service configuration.
func DefaultSearchServiceConfig() SearchServiceConfig {
	return SearchServiceConfig{
		EmbeddingModel: "text-embedding-3-small",
		Logger:         logrus.StandardLogger(),
	}
}

// SearchService runs the agentic participant search pipeline.
type SearchService struct {
	embedder  EmbeddingClient
	retriever ProfileRetriever
	explainer Explainer
	cfg       SearchServiceConfig
	now       func() time.Time
}

// NewSearchService creates a new SearchService instance
func NewSearchService(embedder EmbeddingClient, retriever ProfileRetriever, explainer Explainer) *SearchService {
	return NewSearchServiceWithConfig(embedder, retriever, explainer, DefaultSearchServiceConfig())
}

// NewSearchServiceWithConfig creates a new SearchService with explicit configuration.
func NewSearchServiceWithConfig(embedder EmbeddingClient, retriever ProfileRetriever, explainer Explainer, cfg SearchServiceConfig) *SearchService {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &SearchService{
		embedder:  embedder,
		retriever: retriever,
		explainer: explainer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Search validates the query, embeds it, retrieves and re-ranks candidates
// and asks the explainer for a summary. Dependency failures are returned as
// DomainErrors carrying one of the search error codes.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	start := s.now()

	query, err := validateQuery(input.Query)
	if err != nil {
		return nil, err
	}
	threshold, err := resolveThreshold(input.MatchThreshold)
	if err != nil {
		return nil, err
	}
	limit := clampSearchLimit(input.Limit)

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
		Query:     query,
		Limit:     limit,
	})
	defer span.End()

	var debug *SearchDebug
	if input.IncludeDebug {
		debug = &SearchDebug{}
	}

	vector, err := s.embedQuery(ctx, query, debug)
	if err != nil {
		if domain.ErrorCode(err) != domain.ErrCodeNoEmbeddingsAvailable {
			span.SetError(err)
		}
		return nil, err
	}

	retrievalStart := s.now()
	retrievalThreshold := threshold - retrievalThresholdDelta
	if retrievalThreshold < minRetrievalThreshold {
		retrievalThreshold = minRetrievalThreshold
	}
	candidates, err := s.retriever.RetrieveSimilar(ctx, vector, limit*retrievalOverfetch, retrievalThreshold)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchFailed, "failed to perform similarity search", err)
	}
	if debug != nil {
		debug.VectorSearchTimeMs = s.now().Sub(retrievalStart).Milliseconds()
		debug.SimilarityScores = make([]float64, len(candidates))
		for i, c := range candidates {
			debug.SimilarityScores[i] = c.Similarity
		}
	}
	telemetry.AddBreadcrumb(ctx, "search", fmt.Sprintf("retrieved %d candidates", len(candidates)))

	if input.ExcludeUnavailable {
		candidates = filterUnavailable(candidates)
	}

	if len(candidates) == 0 {
		return &SearchOutput{
			Explanation: noResultsExplanation,
			Matches:     []SearchMatch{},
			Metadata: SearchMetadata{
				Query:        query,
				SearchTimeMs: s.now().Sub(start).Milliseconds(),
			},
			Debug: debug,
		}, nil
	}

	ranked := Rerank(candidates, query)
	if debug != nil {
		debug.RerankScores = make([]float64, len(ranked))
		for i, m := range ranked {
			debug.RerankScores[i] = m.RelevanceScore
		}
	}

	matches := ranked
	if len(matches) > limit {
		matches = matches[:limit]
	}

	explanation := s.explain(ctx, query, matches, debug)
	span.SetResultCount(len(matches))

	return &SearchOutput{
		Explanation: explanation,
		Matches:     matches,
		Metadata: SearchMetadata{
			TotalMatches:  len(candidates),
			ReturnedCount: len(matches),
			SearchTimeMs:  s.now().Sub(start).Milliseconds(),
			Query:         query,
		},
		Debug: debug,
	}, nil
}

// embedQuery runs the embeddings-available probe concurrently with query
// embedding. A failed or empty probe takes precedence over an embedding error.
func (s *SearchService) embedQuery(ctx context.Context, query string, debug *SearchDebug) ([]float32, error) {
	var (
		available bool
		probeErr  error
		vector    []float32
		embedErr  error
		embedTime time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		available, probeErr = s.retriever.HasEmbeddings(gctx)
		if probeErr != nil {
			return probeErr
		}
		if !available {
			return domain.ErrNoEmbeddingsAvailable
		}
		return nil
	})
	g.Go(func() error {
		embedStart := s.now()
		vector, embedErr = s.embedder.GenerateEmbedding(gctx, query)
		embedTime = s.now().Sub(embedStart)
		return nil
	})
	_ = g.Wait()

	if probeErr != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchFailed, "failed to check embeddings availability", probeErr)
	}
	if !available {
		return nil, domain.ErrNoEmbeddingsAvailable
	}
	if embedErr != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingFailed, "failed to generate query embedding", embedErr)
	}

	if debug != nil {
		debug.EmbeddingModel = s.cfg.EmbeddingModel
		debug.EmbeddingGenerationTimeMs = embedTime.Milliseconds()
	}
	return vector, nil
}

// explain never fails: an explainer error degrades to a templated sentence.
func (s *SearchService) explain(ctx context.Context, query string, matches []SearchMatch, debug *SearchDebug) string {
	if s.explainer == nil {
		if debug != nil {
			debug.LLMModel = "none"
		}
		return fallbackExplanation(len(matches))
	}

	profiles := make([]*domain.Profile, len(matches))
	for i, m := range matches {
		profiles[i] = m.Profile
	}

	llmStart := s.now()
	completion, err := s.explainer.Explain(ctx, query, profiles)
	if err != nil || completion == nil || strings.TrimSpace(completion.Text) == "" {
		if err == nil {
			err = fmt.Errorf("empty explanation")
		}
		llmErr := domain.NewDomainErrorWithCause(domain.ErrCodeLLMFailed, "explanation generation failed", err)
		s.cfg.Logger.WithError(llmErr).Warn("search: using fallback explanation")
		if debug != nil {
			debug.LLMModel = "none"
		}
		return fallbackExplanation(len(matches))
	}

	if debug != nil {
		debug.LLMModel = completion.Model
		debug.LLMTokensUsed = completion.TokensUsed
		debug.LLMGenerationTimeMs = s.now().Sub(llmStart).Milliseconds()
	}
	return strings.TrimSpace(completion.Text)
}

func validateQuery(raw string) (string, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return "", domain.ErrQueryEmpty
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return "", domain.ErrQueryTooLong
	}
	return query, nil
}

func resolveThreshold(threshold *float64) (float64, error) {
	if threshold == nil {
		return defaultMatchThreshold, nil
	}
	if *threshold < 0 || *threshold > 1 {
		return 0, domain.NewDomainError(domain.ErrCodeInvalidQuery, "matchThreshold must be between 0 and 1")
	}
	return *threshold, nil
}

func clampSearchLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func filterUnavailable(candidates []ScoredProfile) []ScoredProfile {
	kept := make([]ScoredProfile, 0, len(candidates))
	for _, c := range candidates {
		if c.Profile.StatusTag().IsUnavailable() {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func fallbackExplanation(n int) string {
	noun := "participants"
	if n == 1 {
		noun = "participant"
	}
	return fmt.Sprintf("Found %d %s matching your query.", n, noun)
}
