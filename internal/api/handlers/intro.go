package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/communityos/internal/api"
	"github.com/cloo-solutions/communityos/internal/service"
)

type IntroGenerator interface {
	Generate(ctx context.Context, input service.IntroInput) (*service.IntroOutput, error)
}

type IntroHandler struct {
	svc IntroGenerator
}

func NewIntroHandler(svc IntroGenerator) *IntroHandler {
	return &IntroHandler{svc: svc}
}

type IntroRequest struct {
	SourceID          int64  `json:"sourceId"`
	TargetID          int64  `json:"targetId"`
	TargetDescription string `json:"targetDescription"`
}

type IntroResponse struct {
	Message  string `json:"message"`
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"`
}

func (h *IntroHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req IntroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceID <= 0 {
		api.Error(w, http.StatusBadRequest, "sourceId is required")
		return
	}

	out, err := h.svc.Generate(r.Context(), service.IntroInput{
		SourceID:          req.SourceID,
		TargetID:          req.TargetID,
		TargetDescription: req.TargetDescription,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IntroResponse{
		Message:  out.Message,
		Model:    out.Model,
		Fallback: out.Fallback,
	})
}
