package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/communityos/internal/api"
	"github.com/cloo-solutions/communityos/internal/service"
)

type Searcher interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc Searcher
}

func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query              string   `json:"query"`
	Limit              int      `json:"limit"`
	ExcludeUnavailable bool     `json:"excludeUnavailable"`
	MatchThreshold     *float64 `json:"matchThreshold"`
	IncludeDebug       bool     `json:"includeDebug"`
}

type MatchedFieldsResponse struct {
	Skills    []string `json:"skills,omitempty"`
	Interests []string `json:"interests,omitempty"`
	CanHelp   bool     `json:"canHelp,omitempty"`
	NeedsHelp bool     `json:"needsHelp,omitempty"`
	Bio       string   `json:"bio,omitempty"`
}

type SearchMatchResponse struct {
	Participant     *ParticipantResponse  `json:"participant"`
	RelevanceScore  float64               `json:"relevanceScore"`
	SimilarityScore float64               `json:"similarityScore"`
	MatchedFields   MatchedFieldsResponse `json:"matchedFields"`
}

type SearchMetadataResponse struct {
	TotalMatches  int    `json:"totalMatches"`
	ReturnedCount int    `json:"returnedCount"`
	SearchTimeMs  int64  `json:"searchTimeMs"`
	Query         string `json:"query"`
}

type SearchDebugResponse struct {
	EmbeddingModel            string    `json:"embeddingModel"`
	EmbeddingGenerationTimeMs int64     `json:"embeddingGenerationTimeMs"`
	VectorSearchTimeMs        int64     `json:"vectorSearchTimeMs"`
	SimilarityScores          []float64 `json:"similarityScores"`
	RerankScores              []float64 `json:"rerankScores"`
	LLMModel                  string    `json:"llmModel"`
	LLMTokensUsed             int       `json:"llmTokensUsed"`
	LLMGenerationTimeMs       int64     `json:"llmGenerationTimeMs"`
}

type SearchResponse struct {
	Explanation string                 `json:"explanation"`
	Matches     []SearchMatchResponse  `json:"matches"`
	Metadata    SearchMetadataResponse `json:"metadata"`
	Debug       *SearchDebugResponse   `json:"debug,omitempty"`
}

func searchOutputToResponse(out *service.SearchOutput) SearchResponse {
	resp := SearchResponse{
		Explanation: out.Explanation,
		Matches:     make([]SearchMatchResponse, len(out.Matches)),
		Metadata: SearchMetadataResponse{
			TotalMatches:  out.Metadata.TotalMatches,
			ReturnedCount: out.Metadata.ReturnedCount,
			SearchTimeMs:  out.Metadata.SearchTimeMs,
			Query:         out.Metadata.Query,
		},
	}
	for i, m := range out.Matches {
		resp.Matches[i] = SearchMatchResponse{
			Participant:     participantToResponse(m.Profile),
			RelevanceScore:  m.RelevanceScore,
			SimilarityScore: m.SimilarityScore,
			MatchedFields: MatchedFieldsResponse{
				Skills:    m.MatchedFields.Skills,
				Interests: m.MatchedFields.Interests,
				CanHelp:   m.MatchedFields.CanHelp,
				NeedsHelp: m.MatchedFields.NeedsHelp,
				Bio:       m.MatchedFields.Bio,
			},
		}
	}
	if d := out.Debug; d != nil {
		resp.Debug = &SearchDebugResponse{
			EmbeddingModel:            d.EmbeddingModel,
			EmbeddingGenerationTimeMs: d.EmbeddingGenerationTimeMs,
			VectorSearchTimeMs:        d.VectorSearchTimeMs,
			SimilarityScores:          d.SimilarityScores,
			RerankScores:              d.RerankScores,
			LLMModel:                  d.LLMModel,
			LLMTokensUsed:             d.LLMTokensUsed,
			LLMGenerationTimeMs:       d.LLMGenerationTimeMs,
		}
	}
	return resp
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Search(r.Context(), service.SearchInput{
		Query:              req.Query,
		Limit:              req.Limit,
		ExcludeUnavailable: req.ExcludeUnavailable,
		MatchThreshold:     req.MatchThreshold,
		IncludeDebug:       req.IncludeDebug,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, searchOutputToResponse(out))
}
