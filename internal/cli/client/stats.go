package client

import (
	"fmt"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var stats handlers.StatsResponse
			if err := api.Get(cmd.Context(), "/stats", &stats); err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, stats)
			}

			fmt.Fprintf(out, "Participants: %d (%d embedded, %d with startups)\n",
				stats.TotalParticipants, stats.WithEmbeddings, stats.WithStartups)
			fmt.Fprintf(out, "Status: %d green, %d yellow, %d red, %d unknown\n",
				stats.StatusCounts["green"], stats.StatusCounts["yellow"], stats.StatusCounts["red"], stats.StatusCounts["unknown"])
			if len(stats.TopSkills) > 0 {
				fmt.Fprintln(out, "Top skills:")
				for _, s := range stats.TopSkills {
					fmt.Fprintf(out, "  %-20s %d\n", s.Skill, s.Count)
				}
			}
			return nil
		},
	}
}
