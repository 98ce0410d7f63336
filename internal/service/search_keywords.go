package service

import (
	"regexp"
	"strings"
)

const minKeywordLength = 3

var nonWordPattern = regexp.MustCompile(`\W+`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"who": {}, "here": {}, "people": {}, "show": {}, "me": {}, "find": {}, "are": {},
	"can": {}, "has": {}, "have": {}, "need": {}, "needs": {}, "help": {}, "helps": {},
	"working": {}, "looking": {}, "interested": {},
}

// startupKeywords trigger the startup-domain boost.
var startupKeywords = map[string]struct{}{
	"startup": {}, "founder": {}, "funding": {}, "fundraising": {},
}

// ExtractKeywords lowercases the query, splits it on non-word characters and
// drops short tokens and stopwords. Duplicates are removed, first occurrence wins.
func ExtractKeywords(query string) []string {
	parts := nonWordPattern.Split(strings.ToLower(query), -1)

	keywords := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if len(part) < minKeywordLength {
			continue
		}
		if _, ok := stopwords[part]; ok {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		keywords = append(keywords, part)
	}
	return keywords
}

func containsAnyKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func hasStartupKeyword(keywords []string) bool {
	for _, keyword := range keywords {
		if _, ok := startupKeywords[keyword]; ok {
			return true
		}
	}
	return false
}
