package dataset

import (
	"encoding/json"
	"fmt"
)

// RequiredFields must be present on every record of a seed file.
var RequiredFields = []string{
	"id", "name", "email", "telegram", "linkedin", "photo", "bio", "skills",
	"hasStartup", "startupStage", "startupDescription", "startupName",
	"lookingFor", "canHelp", "needsHelp", "aiUsage",
	"custom_1", "custom_2", "custom_3", "custom_4", "custom_5", "custom_6", "custom_7",
	"custom_array_1", "custom_array_2", "custom_array_3", "custom_array_4",
	"custom_array_5", "custom_array_6", "custom_array_7",
}

// Report is the outcome of a structural validation.
type Report struct {
	Count  int      `json:"count"`
	Errors []string `json:"errors"`
}

func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Report) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate checks that data is a non-empty JSON array of records carrying
// every required field, with the typed fields holding the right kind.
func Validate(data []byte) *Report {
	report := &Report{Errors: []string{}}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		report.addf("failed to parse JSON: %v", err)
		return report
	}
	items, ok := doc.([]any)
	if !ok {
		report.addf("file must contain an array of participants")
		return report
	}

	report.Count = len(items)
	if len(items) == 0 {
		report.addf("file contains no participants")
	}

	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			report.addf("participant %d: must be an object", i)
			continue
		}
		for _, field := range RequiredFields {
			if _, ok := rec[field]; !ok {
				report.addf("participant %d (id: %s): missing field %q", i, describeID(rec["id"]), field)
			}
		}
		if _, ok := rec["id"].(float64); !ok {
			report.addf("participant %d: \"id\" must be a number", i)
		}
		if _, ok := rec["name"].(string); !ok {
			report.addf("participant %d: \"name\" must be a string", i)
		}
		if _, ok := rec["skills"].([]any); !ok {
			report.addf("participant %d: \"skills\" must be an array", i)
		}
		if _, ok := rec["hasStartup"].(bool); !ok {
			report.addf("participant %d: \"hasStartup\" must be a boolean", i)
		}
		if _, ok := rec["lookingFor"].([]any); !ok {
			report.addf("participant %d: \"lookingFor\" must be an array", i)
		}
	}

	return report
}

func describeID(v any) string {
	if id, ok := v.(float64); ok && id != 0 {
		return fmt.Sprintf("%d", int64(id))
	}
	return "unknown"
}
