package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/communityos/internal/api"
	"github.com/cloo-solutions/communityos/internal/service"
)

type Matcher interface {
	FindMatches(ctx context.Context, req service.MatchRequest) ([]service.MatchResult, error)
}

type MatchHandler struct {
	svc Matcher
}

func NewMatchHandler(svc Matcher) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type MatchRequest struct {
	SourceProfileID    int64   `json:"sourceProfileId"`
	ExcludeIDs         []int64 `json:"excludeIds"`
	ExcludeUnavailable *bool   `json:"excludeUnavailable"`
	MaxResults         int     `json:"maxResults"`
}

type MatchResponse struct {
	Participant     *ParticipantResponse `json:"participant"`
	Score           float64              `json:"score"`
	SharedSkills    []string             `json:"sharedSkills"`
	SharedInterests []string             `json:"sharedInterests"`
	Explanation     string               `json:"explanation"`
}

func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceProfileID <= 0 {
		api.Error(w, http.StatusBadRequest, "sourceProfileId is required")
		return
	}

	results, err := h.svc.FindMatches(r.Context(), service.MatchRequest{
		SourceID:           req.SourceProfileID,
		ExcludeIDs:         req.ExcludeIDs,
		ExcludeUnavailable: req.ExcludeUnavailable,
		MaxResults:         req.MaxResults,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]MatchResponse, len(results))
	for i, m := range results {
		resp[i] = MatchResponse{
			Participant:     participantToResponse(m.Profile),
			Score:           m.Score,
			SharedSkills:    nonNilStrings(m.SharedSkills),
			SharedInterests: nonNilStrings(m.SharedInterests),
			Explanation:     m.Explanation,
		}
	}
	api.Success(w, http.StatusOK, resp)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
