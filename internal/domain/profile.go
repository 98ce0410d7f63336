package domain

import (
	"strings"
	"time"
)

// Status is the traffic-light availability tag of a participant.
type Status string

const (
	StatusGreen   Status = "green"
	StatusYellow  Status = "yellow"
	StatusRed     Status = "red"
	StatusUnknown Status = "unknown"
)

// Statuses lists the recognized tags in display order.
var Statuses = []Status{StatusGreen, StatusYellow, StatusRed}

// ParseStatus normalizes a raw tag. Anything unrecognized is StatusUnknown.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusGreen:
		return StatusGreen
	case StatusYellow:
		return StatusYellow
	case StatusRed:
		return StatusRed
	}
	return StatusUnknown
}

// IsValid reports whether s is one of the three recognized tags.
func (s Status) IsValid() bool {
	return s == StatusGreen || s == StatusYellow || s == StatusRed
}

// IsUnavailable reports whether s means the participant does not want to be disturbed.
func (s Status) IsUnavailable() bool {
	return s == StatusRed
}

func (s Status) Label() string {
	switch s {
	case StatusGreen:
		return "Available"
	case StatusYellow:
		return "Maybe"
	case StatusRed:
		return "Deep Work"
	}
	return "Unknown"
}

func (s Status) Description() string {
	switch s {
	case StatusGreen:
		return "Open to pitches, conversations, and connections"
	case StatusYellow:
		return "Selectively available, use discretion"
	case StatusRed:
		return "Not available, in focus mode"
	}
	return ""
}

// Profile is a participant of the community directory.
type Profile struct {
	ID       int64
	Name     string
	Email    string
	Telegram string
	LinkedIn string
	Photo    string

	Bio         string
	EnhancedBio string
	Skills      []string
	// ParsedSkills are extracted from external profiles and complement Skills.
	ParsedSkills []string
	Interests    []string
	Tags         []string
	DataSources  []string
	LookingFor   []string

	CanHelp   string
	NeedsHelp string
	AIUsage   string

	HasStartup         bool
	StartupName        string
	StartupStage       string
	StartupDescription string

	Location   string
	Timezone   string
	Experience string

	// Status is the raw traffic-light tag as stored; use StatusTag for the normalized value.
	Status       string
	Availability string

	Embedding []float32

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusTag returns the normalized traffic-light status.
func (p *Profile) StatusTag() Status {
	return ParseStatus(p.Status)
}

// AllSkills returns primary skills followed by parsed skills.
func (p *Profile) AllSkills() []string {
	all := make([]string, 0, len(p.Skills)+len(p.ParsedSkills))
	all = append(all, p.Skills...)
	all = append(all, p.ParsedSkills...)
	return all
}

// HasEmbedding reports whether the enrichment step has run for this profile.
func (p *Profile) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// Normalize replaces nil list fields with empty slices.
func (p *Profile) Normalize() {
	p.Skills = emptyIfNil(p.Skills)
	p.ParsedSkills = emptyIfNil(p.ParsedSkills)
	p.Interests = emptyIfNil(p.Interests)
	p.Tags = emptyIfNil(p.Tags)
	p.DataSources = emptyIfNil(p.DataSources)
	p.LookingFor = emptyIfNil(p.LookingFor)
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
