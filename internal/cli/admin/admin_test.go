package admin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/communityos/internal/config"
	"github.com/cloo-solutions/communityos/internal/jobs"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDataset = `[{
	"id": 1, "name": "Ada Lovelace", "email": "ada@example.com", "telegram": "@ada",
	"linkedin": "", "photo": "", "bio": "Analyst", "skills": ["Math"],
	"hasStartup": false, "startupStage": "", "startupDescription": "", "startupName": "",
	"lookingFor": ["cofounder"], "canHelp": "", "needsHelp": "", "aiUsage": "",
	"custom_1": "", "custom_2": "", "custom_3": "", "custom_4": "", "custom_5": "green",
	"custom_6": "", "custom_7": "",
	"custom_array_1": [], "custom_array_2": [], "custom_array_3": [], "custom_array_4": [],
	"custom_array_5": [], "custom_array_6": [], "custom_array_7": []
}]`

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDatasetValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, "participants.json", validDataset)

		out, err := executeCommand(t, DatasetCmd(), "validate", path)

		require.NoError(t, err)
		assert.Contains(t, out, "1 participants, valid")
	})

	t.Run("missing fields", func(t *testing.T) {
		path := writeFile(t, "participants.json", `[{"id": 7, "name": "Grace"}]`)

		out, err := executeCommand(t, DatasetCmd(), "validate", path)

		assert.ErrorIs(t, err, errDatasetInvalid)
		assert.Contains(t, out, `participant 0 (id: 7): missing field "email"`)
	})

	t.Run("json output", func(t *testing.T) {
		path := writeFile(t, "participants.json", `{}`)

		out, err := executeCommand(t, DatasetCmd(), "validate", "-o", "json", path)

		assert.ErrorIs(t, err, errDatasetInvalid)
		assert.Contains(t, out, `"file must contain an array of participants"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := executeCommand(t, DatasetCmd(), "validate", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestDatasetBackup_Local(t *testing.T) {
	path := writeFile(t, "participants.json", validDataset)
	dir := filepath.Join(t.TempDir(), "backups")

	out, err := executeCommand(t, DatasetCmd(), "backup", "--local", "--dir", dir, path)

	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "participants.json."))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".backup"))
	assert.Contains(t, out, entries[0].Name())

	copied, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, validDataset, string(copied))
}

func TestDatasetBackup_DefaultDirNextToFile(t *testing.T) {
	t.Setenv("COMMUNITY_S3_ENDPOINT", "")
	path := writeFile(t, "participants.json", validDataset)

	_, err := executeCommand(t, DatasetCmd(), "backup", path)

	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(filepath.Dir(path), ".backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadSource_S3RequiresConfig(t *testing.T) {
	_, err := readSource(context.Background(), &config.Config{}, "s3://community-data/participants.json")
	assert.ErrorContains(t, err, "S3 is not configured")

	_, err = readSource(context.Background(), nil, "s3://")
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "12"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 12}, ids)

	_, err = parseIDs([]string{"3", "x"})
	assert.ErrorContains(t, err, `invalid participant id "x"`)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestEmbedCmd_RejectsAllWithIDs(t *testing.T) {
	_, err := executeCommand(t, EmbedCmd(), "--all", "1")
	assert.ErrorContains(t, err, "--all cannot be combined")
}

func TestPrintBatchResult(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := printBatchResult(cmd, &jobs.BatchResult{
		Total:     3,
		Succeeded: 1,
		Failed:    map[int64]error{9: errors.New("rate limited"), 2: errors.New("empty profile")},
	})

	assert.EqualError(t, err, "2 embeddings failed")
	assert.Equal(t, "Embedded 1 of 3 participants\n  2: empty profile\n  9: rate limited\n", out.String())
}

func TestAddCommands(t *testing.T) {
	root := &cobra.Command{Use: "communityd"}
	AddCommands(root)

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed", "embed", "dataset"}, names)
}
