// Package dataset reads, validates and writes participant seed files.
package dataset

import (
	"strings"
	"time"

	"github.com/cloo-solutions/communityos/internal/domain"
)

// Record is one participant as stored in a seed file. The custom_* slots
// carry enrichment data; see ToProfile for their meaning.
type Record struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Telegram           string   `json:"telegram"`
	LinkedIn           string   `json:"linkedin"`
	Photo              string   `json:"photo"`
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	HasStartup         bool     `json:"hasStartup"`
	StartupStage       string   `json:"startupStage"`
	StartupDescription string   `json:"startupDescription"`
	StartupName        string   `json:"startupName"`
	LookingFor         []string `json:"lookingFor"`
	CanHelp            string   `json:"canHelp"`
	NeedsHelp          string   `json:"needsHelp"`
	AIUsage            string   `json:"aiUsage"`

	Custom1 string `json:"custom_1"`
	Custom2 string `json:"custom_2"`
	Custom3 string `json:"custom_3"`
	Custom4 string `json:"custom_4"`
	Custom5 string `json:"custom_5"`
	Custom6 string `json:"custom_6"`
	Custom7 string `json:"custom_7"`

	CustomArray1 []string `json:"custom_array_1"`
	CustomArray2 []string `json:"custom_array_2"`
	CustomArray3 []string `json:"custom_array_3"`
	CustomArray4 []string `json:"custom_array_4"`
	CustomArray5 []string `json:"custom_array_5"`
	CustomArray6 []string `json:"custom_array_6"`
	CustomArray7 []string `json:"custom_array_7"`

	Note string `json:"_note,omitempty"`
}

// ToProfile maps the record onto the canonical profile.
//
//	custom_1 enhanced bio        custom_array_1 parsed skills
//	custom_2 location            custom_array_2 interests
//	custom_3 timezone            custom_array_3 data sources
//	custom_4 last updated        custom_array_4 common interests (not stored)
//	custom_5 status              custom_array_5 tags
//	custom_6 availability
//	custom_7 experience
func (r Record) ToProfile() *domain.Profile {
	p := &domain.Profile{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Telegram:           r.Telegram,
		LinkedIn:           r.LinkedIn,
		Photo:              r.Photo,
		Bio:                r.Bio,
		Skills:             r.Skills,
		HasStartup:         r.HasStartup,
		StartupStage:       r.StartupStage,
		StartupDescription: r.StartupDescription,
		StartupName:        r.StartupName,
		LookingFor:         r.LookingFor,
		CanHelp:            r.CanHelp,
		NeedsHelp:          r.NeedsHelp,
		AIUsage:            r.AIUsage,
		EnhancedBio:        r.Custom1,
		Location:           r.Custom2,
		Timezone:           r.Custom3,
		Status:             r.Custom5,
		Availability:       r.Custom6,
		Experience:         r.Custom7,
		ParsedSkills:       r.CustomArray1,
		Interests:          r.CustomArray2,
		DataSources:        r.CustomArray3,
		Tags:               r.CustomArray5,
	}
	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.Custom4)); err == nil {
		p.UpdatedAt = ts.UTC()
	}
	p.Normalize()
	return p
}

// FromProfile is the inverse of ToProfile. Unused slots are written as
// empty values so the output passes Validate.
func FromProfile(p *domain.Profile) Record {
	r := Record{
		ID:                 p.ID,
		Name:               p.Name,
		Email:              p.Email,
		Telegram:           p.Telegram,
		LinkedIn:           p.LinkedIn,
		Photo:              p.Photo,
		Bio:                p.Bio,
		Skills:             emptyIfNil(p.Skills),
		HasStartup:         p.HasStartup,
		StartupStage:       p.StartupStage,
		StartupDescription: p.StartupDescription,
		StartupName:        p.StartupName,
		LookingFor:         emptyIfNil(p.LookingFor),
		CanHelp:            p.CanHelp,
		NeedsHelp:          p.NeedsHelp,
		AIUsage:            p.AIUsage,
		Custom1:            p.EnhancedBio,
		Custom2:            p.Location,
		Custom3:            p.Timezone,
		Custom5:            p.Status,
		Custom6:            p.Availability,
		Custom7:            p.Experience,
		CustomArray1:       emptyIfNil(p.ParsedSkills),
		CustomArray2:       emptyIfNil(p.Interests),
		CustomArray3:       emptyIfNil(p.DataSources),
		CustomArray4:       []string{},
		CustomArray5:       emptyIfNil(p.Tags),
		CustomArray6:       []string{},
		CustomArray7:       []string{},
	}
	if !p.UpdatedAt.IsZero() {
		r.Custom4 = p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
