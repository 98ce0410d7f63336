package client

import (
	"github.com/cloo-solutions/communityos/internal/cli"
	"github.com/spf13/cobra"
)

// RootCmd builds the community command tree.
func RootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "community",
		Short: "Community directory CLI",
		Long: `Search the community directory and find people to meet.

Environment variables:
  COMMUNITY_API_URL   API base URL (default: http://localhost:8080)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("output", false, "Output as JSON")
	root.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(root)

	root.AddCommand(SearchCmd())
	root.AddCommand(RouletteCmd())
	root.AddCommand(ParticipantsCmd())
	root.AddCommand(IntroCmd())
	root.AddCommand(StatsCmd())
	root.AddCommand(ConfigCmd())

	return root
}
