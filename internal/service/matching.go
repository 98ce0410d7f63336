package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
)

const (
	skillOverlapWeight    = 0.4
	interestOverlapWeight = 0.3

	complementaryStep     = 0.1
	complementaryMinShare = 0.3
	maxComplementaryScore = 0.2

	sameStageBonus        = 0.05
	sameStartupFlagBonus  = 0.02
	sharedLookingForBonus = 0.03
	maxNonObviousScore    = 0.1

	minMatchScore     = 0.1
	defaultMaxMatches = 3

	genericMatchExplanation = "Potential interesting connection based on profiles"
)

// MatchOptions controls which candidates the scorer may return.
type MatchOptions struct {
	ExcludeIDs []int64
	// ExcludeUnavailable defaults to true when nil.
	ExcludeUnavailable *bool
	MaxResults         int
}

// MatchResult is one ranked roulette suggestion.
type MatchResult struct {
	Profile         *domain.Profile
	Score           float64
	SharedSkills    []string
	SharedInterests []string
	Explanation     string
}

// ScoreMatches ranks the pool against source by skill overlap, interest
// overlap, complementary help needs and a small non-obvious bonus. The source
// itself, excluded IDs and, unless disabled, unavailable candidates are never
// returned. The result is deterministic for identical inputs.
func ScoreMatches(source *domain.Profile, pool []*domain.Profile, opts MatchOptions) []MatchResult {
	excludeUnavailable := true
	if opts.ExcludeUnavailable != nil {
		excludeUnavailable = *opts.ExcludeUnavailable
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxMatches
	}

	excluded := make(map[int64]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	sourceSkills := uniqueStrings(source.AllSkills())

	matches := make([]MatchResult, 0)
	for _, candidate := range pool {
		if candidate == nil || candidate.ID == source.ID {
			continue
		}
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}
		if excludeUnavailable && candidate.StatusTag().IsUnavailable() {
			continue
		}

		skillScore, sharedSkills := skillOverlap(sourceSkills, uniqueStrings(candidate.AllSkills()))
		interestScore, sharedInterests := interestOverlap(source.Interests, candidate.Interests)
		total := skillScore +
			interestScore +
			complementaryScore(source, candidate) +
			nonObviousScore(source, candidate)

		if total <= minMatchScore {
			continue
		}
		matches = append(matches, MatchResult{
			Profile:         candidate,
			Score:           total,
			SharedSkills:    sharedSkills,
			SharedInterests: sharedInterests,
			Explanation:     explainMatch(candidate, sharedSkills, sharedInterests),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Profile.ID < matches[j].Profile.ID
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

func skillOverlap(a, b []string) (float64, []string) {
	shared := intersectStrings(a, b)
	total := len(a) + len(b) - len(shared)
	if total == 0 {
		return 0, shared
	}
	return float64(len(shared)) / float64(total) * skillOverlapWeight, shared
}

func interestOverlap(a, b []string) (float64, []string) {
	shared := intersectStrings(a, b)
	denominator := len(a)
	if len(b) > denominator {
		denominator = len(b)
	}
	if denominator == 0 {
		return 0, shared
	}
	return float64(len(shared)) / float64(denominator) * interestOverlapWeight, shared
}

// complementaryScore compares raw whitespace tokens, without stopword
// filtering, of one side's offer against the other side's need.
func complementaryScore(a, b *domain.Profile) float64 {
	score := 0.0
	if helpsWith(a.CanHelp, b.NeedsHelp) {
		score += complementaryStep
	}
	if helpsWith(b.CanHelp, a.NeedsHelp) {
		score += complementaryStep
	}
	return min(score, maxComplementaryScore)
}

func helpsWith(canHelp, needsHelp string) bool {
	if canHelp == "" || needsHelp == "" {
		return false
	}
	offer := strings.Fields(strings.ToLower(canHelp))
	need := strings.Fields(strings.ToLower(needsHelp))
	overlap := len(intersectStrings(offer, need))

	smaller := len(offer)
	if len(need) < smaller {
		smaller = len(need)
	}
	return overlap > 0 && float64(overlap) >= float64(smaller)*complementaryMinShare
}

func nonObviousScore(a, b *domain.Profile) float64 {
	score := 0.0
	if a.StartupStage != "" && a.StartupStage == b.StartupStage {
		score += sameStageBonus
	}
	if a.HasStartup == b.HasStartup {
		score += sameStartupFlagBonus
	}
	if len(intersectStrings(a.LookingFor, b.LookingFor)) > 0 {
		score += sharedLookingForBonus
	}
	return min(score, maxNonObviousScore)
}

func explainMatch(candidate *domain.Profile, sharedSkills, sharedInterests []string) string {
	var reasons []string

	switch n := len(sharedSkills); {
	case n == 1:
		reasons = append(reasons, "Both know "+sharedSkills[0])
	case n > 1 && n <= 3:
		reasons = append(reasons, "Share skills: "+strings.Join(sharedSkills, ", "))
	case n > 3:
		reasons = append(reasons, fmt.Sprintf("Share %d skills including %s", n, strings.Join(sharedSkills[:2], ", ")))
	}

	switch n := len(sharedInterests); {
	case n == 1:
		reasons = append(reasons, "Both interested in "+sharedInterests[0])
	case n > 1:
		if n > 3 {
			n = 3
		}
		reasons = append(reasons, "Share interests: "+strings.Join(sharedInterests[:n], ", "))
	}

	if candidate.CanHelp != "" || candidate.NeedsHelp != "" {
		reasons = append(reasons, "Complementary skills and needs")
	}

	if len(reasons) == 0 {
		return genericMatchExplanation
	}
	return strings.Join(reasons, ". ") + "."
}

// intersectStrings keeps the elements of a (in a's order, duplicates
// included) that also occur in b.
func intersectStrings(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	shared := make([]string, 0)
	for _, v := range a {
		if _, ok := set[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}

// ParticipantLister loads participants for matching.
type ParticipantLister interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	ListAll(ctx context.Context) ([]*domain.Profile, error)
}

// MatchRequest asks for roulette suggestions for one participant.
type MatchRequest struct {
	SourceID           int64
	ExcludeIDs         []int64
	ExcludeUnavailable *bool
	MaxResults         int
}

// MatchService loads the candidate pool and runs the roulette scorer
type MatchService struct {
	participants ParticipantLister
}

// NewMatchService creates a new MatchService instance
func NewMatchService(participants ParticipantLister) *MatchService {
	return &MatchService{participants: participants}
}

// FindMatches returns up to MaxResults suggestions for the source participant.
func (s *MatchService) FindMatches(ctx context.Context, req MatchRequest) ([]MatchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchService.FindMatches", telemetry.SpanAttributes{
		ParticipantID: req.SourceID,
		Operation:     "match",
		Limit:         req.MaxResults,
	})
	defer span.End()

	if req.MaxResults < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "maxResults cannot be negative")
	}

	source, err := s.participants.GetByID(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}

	pool, err := s.participants.ListAll(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	matches := ScoreMatches(source, pool, MatchOptions{
		ExcludeIDs:         req.ExcludeIDs,
		ExcludeUnavailable: req.ExcludeUnavailable,
		MaxResults:         req.MaxResults,
	})
	span.SetResultCount(len(matches))
	return matches, nil
}
