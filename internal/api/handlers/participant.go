package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/communityos/internal/api"
	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/go-chi/chi/v5"
)

type ParticipantService interface {
	Get(ctx context.Context, id int64) (*domain.Profile, error)
	List(ctx context.Context, input service.ListParticipantsInput) (*service.ParticipantPage, error)
	UpdateStatus(ctx context.Context, input service.UpdateStatusInput) (*domain.Profile, error)
	Skills(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*service.DirectoryStats, error)
}

type ParticipantHandler struct {
	svc ParticipantService
}

func NewParticipantHandler(svc ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{svc: svc}
}

type ParticipantResponse struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Telegram           string   `json:"telegram"`
	LinkedIn           string   `json:"linkedin"`
	Photo              string   `json:"photo"`
	Bio                string   `json:"bio"`
	EnhancedBio        string   `json:"enhancedBio"`
	Skills             []string `json:"skills"`
	ParsedSkills       []string `json:"parsedSkills"`
	Interests          []string `json:"interests"`
	Tags               []string `json:"tags"`
	LookingFor         []string `json:"lookingFor"`
	CanHelp            string   `json:"canHelp"`
	NeedsHelp          string   `json:"needsHelp"`
	AIUsage            string   `json:"aiUsage"`
	HasStartup         bool     `json:"hasStartup"`
	StartupName        string   `json:"startupName"`
	StartupStage       string   `json:"startupStage"`
	StartupDescription string   `json:"startupDescription"`
	Location           string   `json:"location"`
	Timezone           string   `json:"timezone"`
	Experience         string   `json:"experience"`
	Status             string   `json:"status"`
	StatusLabel        string   `json:"statusLabel"`
	Availability       string   `json:"availability"`
	HasEmbedding       bool     `json:"hasEmbedding"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

func participantToResponse(p *domain.Profile) *ParticipantResponse {
	p.Normalize()
	status := p.StatusTag()
	return &ParticipantResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Email:              p.Email,
		Telegram:           p.Telegram,
		LinkedIn:           p.LinkedIn,
		Photo:              p.Photo,
		Bio:                p.Bio,
		EnhancedBio:        p.EnhancedBio,
		Skills:             p.Skills,
		ParsedSkills:       p.ParsedSkills,
		Interests:          p.Interests,
		Tags:               p.Tags,
		LookingFor:         p.LookingFor,
		CanHelp:            p.CanHelp,
		NeedsHelp:          p.NeedsHelp,
		AIUsage:            p.AIUsage,
		HasStartup:         p.HasStartup,
		StartupName:        p.StartupName,
		StartupStage:       p.StartupStage,
		StartupDescription: p.StartupDescription,
		Location:           p.Location,
		Timezone:           p.Timezone,
		Experience:         p.Experience,
		Status:             string(status),
		StatusLabel:        status.Label(),
		Availability:       p.Availability,
		HasEmbedding:       p.HasEmbedding(),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
}

func participantsToResponse(profiles []*domain.Profile) []*ParticipantResponse {
	out := make([]*ParticipantResponse, len(profiles))
	for i, p := range profiles {
		out[i] = participantToResponse(p)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

type ListParticipantsResponse struct {
	Participants []*ParticipantResponse `json:"participants"`
	NextCursor   string                 `json:"nextCursor,omitempty"`
	HasMore      bool                   `json:"hasMore"`
}

type UpdateStatusRequest struct {
	Status       string `json:"status"`
	Availability string `json:"availability"`
}

type SkillCountResponse struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	TotalParticipants int                  `json:"totalParticipants"`
	WithEmbeddings    int                  `json:"withEmbeddings"`
	WithStartups      int                  `json:"withStartups"`
	StatusCounts      map[string]int       `json:"statusCounts"`
	TopSkills         []SkillCountResponse `json:"topSkills"`
}

func parseParticipantID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParticipantID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	participant, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, participantToResponse(participant))
}

// List supports ?name=, ?skill=, ?status=, ?cursor= and ?limit=.
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := service.ListParticipantsInput{
		Name:   q.Get("name"),
		Skill:  q.Get("skill"),
		Status: q.Get("status"),
		Cursor: q.Get("cursor"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		input.Limit = limit
	}

	page, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ListParticipantsResponse{
		Participants: participantsToResponse(page.Participants),
		NextCursor:   page.NextCursor,
		HasMore:      page.HasMore,
	})
}

func (h *ParticipantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParticipantID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		api.Error(w, http.StatusBadRequest, "status is required")
		return
	}

	participant, err := h.svc.UpdateStatus(r.Context(), service.UpdateStatusInput{
		ParticipantID: id,
		Status:        req.Status,
		Availability:  req.Availability,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, participantToResponse(participant))
}

func (h *ParticipantHandler) Skills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.Skills(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if skills == nil {
		skills = []string{}
	}
	api.Success(w, http.StatusOK, skills)
}

func (h *ParticipantHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := StatsResponse{
		TotalParticipants: stats.TotalParticipants,
		WithEmbeddings:    stats.WithEmbeddings,
		WithStartups:      stats.WithStartups,
		StatusCounts:      make(map[string]int, len(stats.StatusCounts)),
		TopSkills:         make([]SkillCountResponse, len(stats.TopSkills)),
	}
	for status, count := range stats.StatusCounts {
		resp.StatusCounts[string(status)] = count
	}
	for i, sc := range stats.TopSkills {
		resp.TopSkills[i] = SkillCountResponse{Skill: sc.Skill, Count: sc.Count}
	}

	api.Success(w, http.StatusOK, resp)
}
