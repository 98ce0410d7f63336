package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecordJSON(id int, name string) map[string]any {
	rec := map[string]any{}
	for _, f := range RequiredFields {
		rec[f] = ""
	}
	for _, f := range []string{"skills", "lookingFor", "custom_array_1", "custom_array_2", "custom_array_3",
		"custom_array_4", "custom_array_5", "custom_array_6", "custom_array_7"} {
		rec[f] = []string{}
	}
	rec["id"] = id
	rec["name"] = name
	rec["hasStartup"] = false
	return rec
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestValidate_Valid(t *testing.T) {
	data := mustJSON(t, []any{validRecordJSON(1, "Ada"), validRecordJSON(2, "Grace")})

	report := Validate(data)

	assert.True(t, report.Valid())
	assert.Equal(t, 2, report.Count)
	assert.Empty(t, report.Errors)
}

func TestValidate_Structural(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"not json", "{", "failed to parse JSON"},
		{"not an array", `{"id": 1}`, "file must contain an array of participants"},
		{"empty array", `[]`, "file contains no participants"},
		{"non-object item", `[42]`, "participant 0: must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate([]byte(tt.data))
			assert.False(t, report.Valid())
			require.NotEmpty(t, report.Errors)
			assert.Contains(t, report.Errors[0], tt.wantErr)
		})
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	missing := validRecordJSON(7, "Ada")
	delete(missing, "custom_array_7")

	badTypes := validRecordJSON(8, "Grace")
	badTypes["id"] = "8"
	badTypes["skills"] = "Go, Rust"
	badTypes["hasStartup"] = "yes"

	report := Validate(mustJSON(t, []any{missing, badTypes}))

	assert.False(t, report.Valid())
	assert.Equal(t, 2, report.Count)
	joined := strings.Join(report.Errors, "\n")
	assert.Contains(t, joined, `participant 0 (id: 7): missing field "custom_array_7"`)
	assert.Contains(t, joined, `participant 1: "id" must be a number`)
	assert.Contains(t, joined, `participant 1: "skills" must be an array`)
	assert.Contains(t, joined, `participant 1: "hasStartup" must be a boolean`)
	assert.NotContains(t, joined, `participant 1: "name"`)
}

func TestRecord_ToProfile(t *testing.T) {
	r := Record{
		ID:           3,
		Name:         "Linus",
		Skills:       []string{"C"},
		HasStartup:   true,
		StartupName:  "Kernel Inc",
		Custom1:      "Enhanced",
		Custom2:      "Helsinki",
		Custom3:      "UTC+2",
		Custom4:      "2024-12-07T12:30:45.123Z",
		Custom5:      " Red ",
		Custom6:      "Deep work mode",
		Custom7:      "30 years",
		CustomArray1: []string{"Git"},
		CustomArray2: []string{"diving"},
		CustomArray3: []string{"telegram"},
		CustomArray4: []string{"ignored"},
		CustomArray5: []string{"oss"},
	}

	p := r.ToProfile()

	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Enhanced", p.EnhancedBio)
	assert.Equal(t, "Helsinki", p.Location)
	assert.Equal(t, "UTC+2", p.Timezone)
	assert.Equal(t, domain.StatusRed, p.StatusTag())
	assert.Equal(t, "Deep work mode", p.Availability)
	assert.Equal(t, "30 years", p.Experience)
	assert.Equal(t, []string{"Git"}, p.ParsedSkills)
	assert.Equal(t, []string{"diving"}, p.Interests)
	assert.Equal(t, []string{"telegram"}, p.DataSources)
	assert.Equal(t, []string{"oss"}, p.Tags)
	assert.Equal(t, []string{}, p.LookingFor)
	assert.Equal(t, time.Date(2024, 12, 7, 12, 30, 45, 123000000, time.UTC), p.UpdatedAt)
}

func TestRecord_ToProfile_BadTimestamp(t *testing.T) {
	p := Record{ID: 1, Name: "A", Custom4: "yesterday"}.ToProfile()
	assert.True(t, p.UpdatedAt.IsZero())
}

func TestEncode_RoundTripsThroughValidate(t *testing.T) {
	profiles := []*domain.Profile{
		{ID: 1, Name: "Ada", Skills: []string{"Rust"}, Interests: []string{"chess"}, Status: "green",
			UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: 2, Name: "Grace"},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, profiles))

	report := Validate(buf.Bytes())
	require.True(t, report.Valid(), report.Errors)

	decoded, err := Profiles(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "Ada", decoded[0].Name)
	assert.Equal(t, []string{"chess"}, decoded[0].Interests)
	assert.Equal(t, profiles[0].UpdatedAt, decoded[0].UpdatedAt)
	assert.Equal(t, []string{}, decoded[1].Skills)
}

func TestParse_Invalid(t *testing.T) {
	records, report, err := Parse([]byte(`[]`))

	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrInvalidDataset)
	assert.False(t, report.Valid())
}

func TestBackupName(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 890000000, time.UTC)
	assert.Equal(t, "participants.json.2025-03-04T05-06-07-890Z.backup", BackupName("data/participants.json", now))
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "participants.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"id":1}]`), 0o644))

	backupDir := filepath.Join(dir, DefaultBackupDir)
	dst, err := BackupFile(src, backupDir, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(backupDir, "participants.json.2025-01-01T00-00-00-000Z.backup"), dst)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(content))
}

func TestBackupFile_MissingSource(t *testing.T) {
	_, err := BackupFile(filepath.Join(t.TempDir(), "nope.json"), t.TempDir(), time.Now())
	assert.ErrorContains(t, err, "failed to open dataset")
}
