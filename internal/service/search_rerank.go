package service

import (
	"math"
	"sort"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
)

const (
	exactSkillBoost    = 0.4
	keywordSkillBoost  = 0.2
	skillRatioWeight   = 0.5
	maxInterestBoost   = 0.15
	interestRatioBoost = 0.2
	canHelpBoost       = 0.1
	needsHelpBoost     = 0.1
	bioBoost           = 0.05
	enhancedBioBoost   = 0.05
	hasStartupBoost    = 0.1
	startupNameBoost   = 0.05
	maxKeywordBoost    = 0.5

	strongBoostThreshold = 0.3
	strongKeywordWeight  = 0.5
	defaultKeywordWeight = 0.3

	bioSnippetMaxChars = 100
)

// MatchedFields records which profile fields matched the query keywords.
type MatchedFields struct {
	Skills    []string
	Interests []string
	CanHelp   bool
	NeedsHelp bool
	// Bio holds a snippet of the biography (or enhanced bio) that matched.
	Bio string
}

// ScoredProfile is a retrieval candidate with its raw vector similarity.
type ScoredProfile struct {
	Profile    *domain.Profile
	Similarity float64
}

// SearchMatch is one re-ranked search result.
type SearchMatch struct {
	Profile         *domain.Profile
	RelevanceScore  float64
	SimilarityScore float64
	MatchedFields   MatchedFields
}

// KeywordBoost scores how well a profile's structured fields match the query.
// The result is always within [0, 0.5].
func KeywordBoost(p *domain.Profile, keywords []string, query string) (float64, MatchedFields) {
	var fields MatchedFields
	boost := 0.0

	allSkills := p.AllSkills()
	queryLower := strings.ToLower(query)

	var phraseMatches, keywordMatches []string
	for _, skill := range allSkills {
		lower := strings.ToLower(skill)
		if queryLower != "" && strings.Contains(lower, queryLower) {
			phraseMatches = append(phraseMatches, skill)
		}
		if containsAnyKeyword(lower, keywords) {
			keywordMatches = append(keywordMatches, skill)
		}
	}

	matchedSkills, base := keywordMatches, keywordSkillBoost
	if len(phraseMatches) > 0 {
		matchedSkills, base = phraseMatches, exactSkillBoost
	}
	if len(matchedSkills) > 0 {
		fields.Skills = matchedSkills
		boost += math.Min(base, ratio(len(matchedSkills), len(allSkills))*skillRatioWeight)
	}

	var matchedInterests []string
	for _, interest := range p.Interests {
		if containsAnyKeyword(interest, keywords) {
			matchedInterests = append(matchedInterests, interest)
		}
	}
	if len(matchedInterests) > 0 {
		fields.Interests = matchedInterests
		boost += math.Min(maxInterestBoost, ratio(len(matchedInterests), len(p.Interests))*interestRatioBoost)
	}

	if containsAnyKeyword(p.CanHelp, keywords) {
		fields.CanHelp = true
		boost += canHelpBoost
	}
	if containsAnyKeyword(p.NeedsHelp, keywords) {
		fields.NeedsHelp = true
		boost += needsHelpBoost
	}

	if containsAnyKeyword(p.Bio, keywords) {
		fields.Bio = truncateRunes(p.Bio, bioSnippetMaxChars)
		boost += bioBoost
	}
	if containsAnyKeyword(p.EnhancedBio, keywords) {
		if fields.Bio == "" {
			fields.Bio = truncateRunes(p.EnhancedBio, bioSnippetMaxChars)
		}
		boost += enhancedBioBoost
	}

	if hasStartupKeyword(keywords) {
		if p.HasStartup {
			boost += hasStartupBoost
		}
		if p.StartupName != "" {
			boost += startupNameBoost
		}
	}

	return math.Min(boost, maxKeywordBoost), fields
}

// Rerank combines vector similarity with the keyword boost and orders the
// candidates by relevance, highest first. Ties are broken by ascending
// profile ID. No candidate is dropped.
func Rerank(candidates []ScoredProfile, query string) []SearchMatch {
	keywords := ExtractKeywords(query)

	matches := make([]SearchMatch, 0, len(candidates))
	for _, candidate := range candidates {
		boost, fields := KeywordBoost(candidate.Profile, keywords, query)

		keywordWeight := defaultKeywordWeight
		if boost > strongBoostThreshold {
			keywordWeight = strongKeywordWeight
		}
		similarityWeight := 1 - keywordWeight

		matches = append(matches, SearchMatch{
			Profile:         candidate.Profile,
			RelevanceScore:  math.Min(1.0, candidate.Similarity*similarityWeight+boost*keywordWeight),
			SimilarityScore: candidate.Similarity,
			MatchedFields:   fields,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RelevanceScore == matches[j].RelevanceScore {
			return matches[i].Profile.ID < matches[j].Profile.ID
		}
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})

	return matches
}

func ratio(matched, total int) float64 {
	if total < 1 {
		total = 1
	}
	return float64(matched) / float64(total)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
