package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParticipantHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	profile := newTestProfile(7, "Ada Lovelace")
	profile.Status = " Yellow"
	profile.Embedding = []float32{0.1, 0.2}
	mockSvc.On("Get", mock.Anything, int64(7)).Return(profile, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/participants/7", nil), "id", "7")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ParticipantResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.Data.ID)
	assert.Equal(t, "Ada Lovelace", resp.Data.Name)
	assert.Equal(t, "yellow", resp.Data.Status)
	assert.Equal(t, "Maybe", resp.Data.StatusLabel)
	assert.True(t, resp.Data.HasEmbedding)
	assert.Equal(t, []string{}, resp.Data.Tags)
	assert.Equal(t, "2025-03-04T05:06:07Z", resp.Data.CreatedAt)
	mockSvc.AssertExpectations(t)
}

func TestParticipantHandler_Get_InvalidID(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/participants/abc", nil), "id", "abc")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestParticipantHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, int64(99)).Return(nil, domain.ErrParticipantNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/participants/99", nil), "id", "99")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "participant not found")
}

func TestParticipantHandler_List(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	page := &service.ParticipantPage{
		Participants: []*domain.Profile{newTestProfile(1, "Ada"), newTestProfile(2, "Grace")},
		NextCursor:   "abc",
		HasMore:      true,
	}
	mockSvc.On("List", mock.Anything, service.ListParticipantsInput{
		Name:   "a",
		Skill:  "Go",
		Status: "green",
		Limit:  2,
	}).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/participants?name=a&skill=Go&status=green&limit=2", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ListParticipantsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Data.Participants, 2)
	assert.Equal(t, "Grace", resp.Data.Participants[1].Name)
	assert.Equal(t, "abc", resp.Data.NextCursor)
	assert.True(t, resp.Data.HasMore)
}

func TestParticipantHandler_List_InvalidLimit(t *testing.T) {
	handler := NewParticipantHandler(new(MockParticipantService))

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/participants?limit=many", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParticipantHandler_UpdateStatus(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	updated := newTestProfile(3, "Linus")
	updated.Status = "red"
	updated.Availability = "after 6pm"
	mockSvc.On("UpdateStatus", mock.Anything, service.UpdateStatusInput{
		ParticipantID: 3,
		Status:        "red",
		Availability:  "after 6pm",
	}).Return(updated, nil)

	req := withURLParam(jsonRequest(http.MethodPut, "/participants/3/status", `{"status":"red","availability":"after 6pm"}`), "id", "3")
	w := httptest.NewRecorder()

	handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ParticipantResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "red", resp.Data.Status)
	assert.Equal(t, "Deep Work", resp.Data.StatusLabel)
	assert.Equal(t, "after 6pm", resp.Data.Availability)
}

func TestParticipantHandler_UpdateStatus_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing status", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "rejected status", body: `{"status":"purple"}`, svcErr: domain.ErrInvalidStatus, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockParticipantService)
			handler := NewParticipantHandler(mockSvc)
			if tt.svcErr != nil {
				mockSvc.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}

			req := withURLParam(jsonRequest(http.MethodPut, "/participants/1/status", tt.body), "id", "1")
			w := httptest.NewRecorder()

			handler.UpdateStatus(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestParticipantHandler_Skills(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	mockSvc.On("Skills", mock.Anything).Return(nil, nil).Once()

	w := httptest.NewRecorder()
	handler.Skills(w, httptest.NewRequest(http.MethodGet, "/skills", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestParticipantHandler_Stats(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	mockSvc.On("Stats", mock.Anything).Return(&service.DirectoryStats{
		TotalParticipants: 4,
		WithEmbeddings:    3,
		WithStartups:      1,
		StatusCounts:      map[domain.Status]int{domain.StatusGreen: 2, domain.StatusUnknown: 2},
		TopSkills:         []service.SkillCount{{Skill: "Rust", Count: 2}},
	}, nil)

	w := httptest.NewRecorder()
	handler.Stats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{
		"totalParticipants":4,
		"withEmbeddings":3,
		"withStartups":1,
		"statusCounts":{"green":2,"unknown":2},
		"topSkills":[{"skill":"Rust","count":2}]
	}}`, w.Body.String())
}

func TestParticipantHandler_Stats_Error(t *testing.T) {
	mockSvc := new(MockParticipantService)
	handler := NewParticipantHandler(mockSvc)

	mockSvc.On("Stats", mock.Anything).Return(nil, errors.New("connection refused"))

	w := httptest.NewRecorder()
	handler.Stats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
