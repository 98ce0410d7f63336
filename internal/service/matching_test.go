package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func matchIDs(results []MatchResult) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.Profile.ID
	}
	return ids
}

func TestScoreMatches_SharedSkillScenario(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Rust", "Go"}}
	candidate := &domain.Profile{ID: 2, Skills: []string{"Rust", "Python"}}

	results := ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{})

	require.Len(t, results, 1)
	// 1 shared of 3 distinct skills, plus the same-startup-flag bonus
	assert.InDelta(t, (1.0/3.0)*0.4+0.02, results[0].Score, 1e-9)
	assert.Equal(t, []string{"Rust"}, results[0].SharedSkills)
	assert.Empty(t, results[0].SharedInterests)
	assert.Equal(t, "Both know Rust.", results[0].Explanation)
}

func TestScoreMatches_UnavailableExcludedByDefault(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Rust", "Go"}}
	candidate := &domain.Profile{ID: 2, Skills: []string{"Rust", "Python"}, Status: " Red"}

	assert.Empty(t, ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{}))

	results := ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{ExcludeUnavailable: boolPtr(false)})
	assert.Equal(t, []int64{2}, matchIDs(results))
}

func TestScoreMatches_SkipsSelfAndExcluded(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Go"}}
	pool := []*domain.Profile{
		source,
		{ID: 2, Skills: []string{"Go"}},
		{ID: 3, Skills: []string{"Go"}},
		nil,
		{ID: 4, Skills: []string{"Go"}},
	}

	results := ScoreMatches(source, pool, MatchOptions{ExcludeIDs: []int64{3}, MaxResults: 10})

	assert.Equal(t, []int64{2, 4}, matchIDs(results))
}

func TestScoreMatches_BelowThresholdDropped(t *testing.T) {
	source := &domain.Profile{ID: 1}
	// only the shared startup flag contributes
	pool := []*domain.Profile{{ID: 2}, {ID: 3, Skills: []string{"Go"}}}

	assert.Empty(t, ScoreMatches(source, pool, MatchOptions{}))
}

func TestScoreMatches_ParsedSkillsAndDuplicates(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Go", "Go"}, ParsedSkills: []string{"Kubernetes"}}
	candidate := &domain.Profile{ID: 2, Skills: []string{"Kubernetes"}, ParsedSkills: []string{"Go", "Kubernetes"}}

	results := ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, []string{"Go", "Kubernetes"}, results[0].SharedSkills)
	assert.InDelta(t, 0.4+0.02, results[0].Score, 1e-9)
	assert.Equal(t, "Share skills: Go, Kubernetes.", results[0].Explanation)
}

func TestScoreMatches_InterestOverlap(t *testing.T) {
	source := &domain.Profile{ID: 1, HasStartup: true, Interests: []string{"climbing", "jazz", "chess", "baking"}}
	candidate := &domain.Profile{ID: 2, Interests: []string{"jazz", "climbing"}}

	results := ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{})

	require.Len(t, results, 1)
	assert.InDelta(t, 2.0/4.0*0.3, results[0].Score, 1e-9)
	assert.Equal(t, []string{"climbing", "jazz"}, results[0].SharedInterests)
	assert.Equal(t, "Share interests: climbing, jazz.", results[0].Explanation)
}

func TestScoreMatches_ComplementaryBothDirections(t *testing.T) {
	source := &domain.Profile{
		ID:         1,
		HasStartup: true,
		CanHelp:    "Go backend reviews",
		NeedsHelp:  "product design help",
	}
	candidate := &domain.Profile{
		ID:        2,
		CanHelp:   "Design",
		NeedsHelp: "backend architecture",
	}

	results := ScoreMatches(source, []*domain.Profile{candidate}, MatchOptions{})

	require.Len(t, results, 1)
	assert.InDelta(t, 0.2, results[0].Score, 1e-9)
	assert.Equal(t, "Complementary skills and needs.", results[0].Explanation)
}

func TestComplementaryScore_RequiresShareOfSmallerSide(t *testing.T) {
	a := &domain.Profile{CanHelp: "marketing sales hiring fundraising legal ops"}
	b := &domain.Profile{NeedsHelp: "help with legal questions about my company incorporation abroad"}
	// one shared token against min(6, 9) * 0.3 = 1.8
	assert.Equal(t, 0.0, complementaryScore(a, b))

	b.NeedsHelp = "legal ops"
	assert.InDelta(t, 0.1, complementaryScore(a, b), 1e-9)
}

func TestNonObviousScore(t *testing.T) {
	a := &domain.Profile{HasStartup: true, StartupStage: "seed", LookingFor: []string{"cofounder", "investors"}}
	b := &domain.Profile{HasStartup: true, StartupStage: "seed", LookingFor: []string{"investors"}}
	assert.InDelta(t, 0.1, nonObviousScore(a, b), 1e-9)

	b.StartupStage = "Seed"
	assert.InDelta(t, 0.05, nonObviousScore(a, b), 1e-9)

	empty := &domain.Profile{}
	assert.InDelta(t, 0.02, nonObviousScore(empty, &domain.Profile{}), 1e-9)
}

func TestExplainMatch(t *testing.T) {
	tests := []struct {
		name      string
		candidate *domain.Profile
		skills    []string
		interests []string
		expected  string
	}{
		{"nothing", &domain.Profile{}, nil, nil, "Potential interesting connection based on profiles"},
		{"one skill", &domain.Profile{}, []string{"Go"}, nil, "Both know Go."},
		{"three skills", &domain.Profile{}, []string{"Go", "SQL", "K8s"}, nil, "Share skills: Go, SQL, K8s."},
		{"many skills", &domain.Profile{}, []string{"Go", "SQL", "K8s", "Rust"}, nil, "Share 4 skills including Go, SQL."},
		{"one interest", &domain.Profile{}, nil, []string{"chess"}, "Both interested in chess."},
		{"many interests", &domain.Profile{}, nil, []string{"a", "b", "c", "d"}, "Share interests: a, b, c."},
		{
			"everything",
			&domain.Profile{NeedsHelp: "hiring"},
			[]string{"Go"},
			[]string{"chess"},
			"Both know Go. Both interested in chess. Complementary skills and needs.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, explainMatch(tt.candidate, tt.skills, tt.interests))
		})
	}
}

func TestScoreMatches_OrderingAndLimit(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Go", "Rust", "SQL"}}
	pool := []*domain.Profile{
		{ID: 9, Skills: []string{"Go"}},
		{ID: 5, Skills: []string{"Go", "Rust"}},
		{ID: 4, Skills: []string{"Go"}},
		{ID: 7, Skills: []string{"Go", "Rust", "SQL"}},
	}

	results := ScoreMatches(source, pool, MatchOptions{})

	assert.Equal(t, []int64{7, 5, 4}, matchIDs(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestScoreMatches_Deterministic(t *testing.T) {
	source := &domain.Profile{ID: 1, Skills: []string{"Go"}, Interests: []string{"jazz"}, CanHelp: "go code review"}
	pool := []*domain.Profile{
		{ID: 2, Skills: []string{"Go"}, NeedsHelp: "code review"},
		{ID: 3, Interests: []string{"jazz"}},
		{ID: 4, Skills: []string{"Go", "C"}},
	}

	first := ScoreMatches(source, pool, MatchOptions{MaxResults: 5})
	second := ScoreMatches(source, pool, MatchOptions{MaxResults: 5})

	assert.Equal(t, first, second)
}

func TestMatchService_FindMatches(t *testing.T) {
	repo := new(MockParticipantRepository)
	svc := NewMatchService(repo)
	ctx := context.Background()

	source := &domain.Profile{ID: 1, Skills: []string{"Rust", "Go"}}
	pool := []*domain.Profile{
		source,
		{ID: 2, Skills: []string{"Rust", "Python"}},
		{ID: 3, Skills: []string{"Go"}},
	}
	repo.On("GetByID", mock.Anything, int64(1)).Return(source, nil)
	repo.On("ListAll", mock.Anything).Return(pool, nil)

	results, err := svc.FindMatches(ctx, MatchRequest{SourceID: 1, ExcludeIDs: []int64{3}})

	require.NoError(t, err)
	assert.Equal(t, []int64{2}, matchIDs(results))
	repo.AssertExpectations(t)
}

func TestMatchService_FindMatches_SourceNotFound(t *testing.T) {
	repo := new(MockParticipantRepository)
	svc := NewMatchService(repo)

	repo.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrParticipantNotFound)

	_, err := svc.FindMatches(context.Background(), MatchRequest{SourceID: 42})

	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
	repo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestMatchService_FindMatches_PoolError(t *testing.T) {
	repo := new(MockParticipantRepository)
	svc := NewMatchService(repo)

	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Profile{ID: 1}, nil)
	repo.On("ListAll", mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.FindMatches(context.Background(), MatchRequest{SourceID: 1})

	assert.ErrorContains(t, err, "failed to load candidate pool")
}

func TestMatchService_FindMatches_NegativeMax(t *testing.T) {
	svc := NewMatchService(new(MockParticipantRepository))

	_, err := svc.FindMatches(context.Background(), MatchRequest{SourceID: 1, MaxResults: -1})

	assert.Equal(t, domain.ErrCodeValidation, domain.ErrorCode(err))
}
