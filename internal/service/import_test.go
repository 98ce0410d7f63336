package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sequenceUUIDGen struct {
	n int
}

func (g *sequenceUUIDGen) NewString() string {
	g.n++
	return fmt.Sprintf("job-%d", g.n)
}

func TestImportService_Import(t *testing.T) {
	participants := new(MockParticipantRepository)
	jobs := new(MockEmbeddingJobRepository)
	runner := &MockTxRunner{repos: &mockTxRepos{participants: participants, jobs: jobs}}
	svc := NewImportServiceWithUUIDGen(runner, &sequenceUUIDGen{})

	profiles := []*domain.Profile{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Ben", Skills: []string{"Go"}},
	}

	participants.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)
	jobs.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.EmbeddingJob) bool {
		return j.ID == "job-1" && j.ParticipantID == 1 && j.Status == domain.EmbeddingJobStatusPending
	})).Return(nil).Once()
	jobs.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.EmbeddingJob) bool {
		return j.ID == "job-2" && j.ParticipantID == 2 && domain.ValidateEmbeddingJob(j) == nil
	})).Return(nil).Once()

	result, err := svc.Import(context.Background(), profiles)

	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Participants: 2, EmbeddingJobs: 2}, result)
	assert.NotNil(t, profiles[0].Skills)
	assert.NotNil(t, profiles[0].Interests)
	participants.AssertNumberOfCalls(t, "Upsert", 2)
	jobs.AssertExpectations(t)
}

func TestImportService_Import_RejectsMissingID(t *testing.T) {
	runner := &MockTxRunner{}
	svc := NewImportService(runner)

	_, err := svc.Import(context.Background(), []*domain.Profile{{Name: "no id"}})

	assert.Equal(t, domain.ErrCodeValidation, domain.ErrorCode(err))
}

func TestImportService_Import_UpsertFailureAborts(t *testing.T) {
	participants := new(MockParticipantRepository)
	jobs := new(MockEmbeddingJobRepository)
	runner := &MockTxRunner{repos: &mockTxRepos{participants: participants, jobs: jobs}}
	svc := NewImportService(runner)

	participants.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("unique violation"))

	_, err := svc.Import(context.Background(), []*domain.Profile{{ID: 7}})

	assert.ErrorContains(t, err, "failed to upsert participant 7")
	jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportService_Import_TxError(t *testing.T) {
	runner := &MockTxRunner{err: errors.New("begin failed")}
	svc := NewImportService(runner)

	_, err := svc.Import(context.Background(), []*domain.Profile{{ID: 7}})

	assert.EqualError(t, err, "begin failed")
}
