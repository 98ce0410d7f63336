package service

import (
	"context"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the OpenAI embedding client
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockProfileRetriever struct {
	mock.Mock
}

func (m *MockProfileRetriever) HasEmbeddings(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRetriever) RetrieveSimilar(ctx context.Context, embedding []float32, limit int, threshold float64) ([]ScoredProfile, error) {
	args := m.Called(ctx, embedding, limit, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScoredProfile), args.Error(1)
}

type MockExplainer struct {
	mock.Mock
}

func (m *MockExplainer) Explain(ctx context.Context, query string, profiles []*domain.Profile) (*domain.Completion, error) {
	args := m.Called(ctx, query, profiles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Completion), args.Error(1)
}

type MockIntroWriter struct {
	mock.Mock
}

func (m *MockIntroWriter) WriteIntro(ctx context.Context, brief domain.IntroBrief) (*domain.Completion, error) {
	args := m.Called(ctx, brief)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Completion), args.Error(1)
}

// MockParticipantRepository mocks the participant store
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockParticipantRepository) ListAll(ctx context.Context) ([]*domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func (m *MockParticipantRepository) List(ctx context.Context, filter ParticipantFilter) (*ParticipantPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ParticipantPage), args.Error(1)
}

func (m *MockParticipantRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status, availability string) error {
	args := m.Called(ctx, id, status, availability)
	return args.Error(0)
}

func (m *MockParticipantRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

func (m *MockParticipantRepository) ListIDsMissingEmbedding(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockParticipantRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockParticipantRepository) Skills(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockParticipantRepository) Stats(ctx context.Context) (*DirectoryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DirectoryStats), args.Error(1)
}

func (m *MockParticipantRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockEmbeddingJobRepository mocks embedding job persistence
type MockEmbeddingJobRepository struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockTxRunner runs the callback with the provided repositories.
type MockTxRunner struct {
	repos TxRepositories
	err   error
}

func (m *MockTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(m.repos)
}

type mockTxRepos struct {
	participants ParticipantRepository
	jobs         EmbeddingJobRepository
}

func (r *mockTxRepos) Participants() ParticipantRepository {
	return r.participants
}

func (r *mockTxRepos) EmbeddingJobs() EmbeddingJobRepository {
	return r.jobs
}
