package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid participant id %q", s)
	}
	return id, nil
}

// RouletteCmd suggests coffee-roulette partners for a participant.
func RouletteCmd() *cobra.Command {
	var (
		exclude            []int64
		maxResults         int
		includeUnavailable bool
	)

	cmd := &cobra.Command{
		Use:   "roulette <participant-id>",
		Short: "Suggest people to meet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			excludeUnavailable := !includeUnavailable
			return runRoulette(cmd, handlers.MatchRequest{
				SourceProfileID:    id,
				ExcludeIDs:         exclude,
				ExcludeUnavailable: &excludeUnavailable,
				MaxResults:         maxResults,
			})
		},
	}

	cmd.Flags().Int64SliceVar(&exclude, "exclude", nil, "Participant ids to skip (already met)")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 3, "Maximum number of suggestions")
	cmd.Flags().BoolVar(&includeUnavailable, "include-unavailable", false, "Also suggest participants in deep work")

	return cmd
}

func runRoulette(cmd *cobra.Command, req handlers.MatchRequest) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var matches []handlers.MatchResponse
	if err := api.Post(cmd.Context(), "/matches", req, &matches); err != nil {
		return fmt.Errorf("roulette failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, matches)
	}

	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches found. Try --include-unavailable or fewer exclusions.")
		return nil
	}

	for i, m := range matches {
		fmt.Fprintf(out, "%d. ", i+1)
		printParticipantLine(out, m.Participant)
		fmt.Fprintf(out, "   score %.2f: %s\n", m.Score, m.Explanation)
		if len(m.SharedSkills) > 0 {
			fmt.Fprintf(out, "   Shared skills: %s\n", strings.Join(m.SharedSkills, ", "))
		}
	}
	return nil
}
