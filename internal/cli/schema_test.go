package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "community", Short: "Community directory CLI"}
	AddHelpJSONFlag(root)
	root.PersistentFlags().Bool("output", false, "JSON output")

	participants := &cobra.Command{Use: "participants", Aliases: []string{"p"}, Short: "Browse the directory"}
	list := &cobra.Command{Use: "list", Short: "List participants", Run: func(*cobra.Command, []string) {}}
	list.Flags().StringP("status", "s", "", "Filter by status")
	list.Flags().Int("limit", 50, "Page size")
	participants.AddCommand(list)

	intro := &cobra.Command{Use: "intro <id>", Short: "Draft an intro", Run: func(*cobra.Command, []string) {}}
	intro.Flags().Int64("to", 0, "Target participant")
	_ = intro.MarkFlagRequired("to")

	hidden := &cobra.Command{Use: "debug", Hidden: true}
	root.AddCommand(participants, intro, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "community", schema.Name)
	require.Len(t, schema.Flags, 1, "help-json is never listed")
	assert.Equal(t, "output", schema.Flags[0].Name)
	assert.False(t, schema.Flags[0].Inherited)
	require.Len(t, schema.Subcommands, 2)

	participants := schema.Subcommands[1]
	assert.Equal(t, "participants", participants.Name)
	assert.Equal(t, []string{"p"}, participants.Aliases)
	require.Len(t, participants.Subcommands, 1)

	list := participants.Subcommands[0]
	assert.Equal(t, "List participants", list.Description)
	require.Len(t, list.Flags, 3)
	assert.Equal(t, FlagSchema{Name: "limit", Type: "int", Default: "50", Description: "Page size"}, list.Flags[0])
	assert.Equal(t, FlagSchema{Name: "status", Shorthand: "s", Type: "string", Description: "Filter by status"}, list.Flags[1])
	assert.Equal(t, "output", list.Flags[2].Name)
	assert.True(t, list.Flags[2].Inherited)
}

func TestGenerateSchema_RequiredFlag(t *testing.T) {
	schema := GenerateSchema(testTree())

	intro := schema.Subcommands[0]
	require.Equal(t, "intro", intro.Name)
	require.NotEmpty(t, intro.Flags)
	assert.Equal(t, "to", intro.Flags[0].Name)
	assert.True(t, intro.Flags[0].Required)
}

func TestFindTargetCommand(t *testing.T) {
	root := testTree()

	assert.Equal(t, "list", findTargetCommand(root, []string{"participants", "list"}).Name())
	assert.Equal(t, "list", findTargetCommand(root, []string{"p", "list"}).Name())
	assert.Equal(t, "participants", findTargetCommand(root, []string{"participants", "--output"}).Name())
	assert.Equal(t, "community", findTargetCommand(root, nil).Name())
}

func TestHandleHelpJSON(t *testing.T) {
	root := testTree()

	var buf bytes.Buffer
	handled, err := HandleHelpJSON(&buf, root, []string{"p", "list", "--help-json"})
	require.NoError(t, err)
	assert.True(t, handled)

	var schema CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "list", schema.Name)

	buf.Reset()
	handled, err = HandleHelpJSON(&buf, root, []string{"p", "list"})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, buf.String())
}
