package client

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		limit              int
		threshold          float64
		excludeUnavailable bool
		debug              bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search participants",
		Long:  "Searches the community directory with a natural-language query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := handlers.SearchRequest{
				Query:              strings.Join(args, " "),
				Limit:              limit,
				ExcludeUnavailable: excludeUnavailable,
				IncludeDebug:       debug,
			}
			if cmd.Flags().Changed("threshold") {
				req.MatchThreshold = &threshold
			}
			return runSearch(cmd, req)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results (max 20)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.3, "Minimum relevance score")
	cmd.Flags().BoolVar(&excludeUnavailable, "exclude-unavailable", false, "Hide participants in deep work")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include timings and raw scores")

	return cmd
}

func runSearch(cmd *cobra.Command, req handlers.SearchRequest) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp handlers.SearchResponse
	if err := api.Post(cmd.Context(), "/search", req, &resp); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, resp)
	}

	fmt.Fprintln(out, resp.Explanation)
	if len(resp.Matches) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nFound %d of %d matches in %dms:\n\n",
		resp.Metadata.ReturnedCount, resp.Metadata.TotalMatches, resp.Metadata.SearchTimeMs)
	for i, m := range resp.Matches {
		fmt.Fprintf(out, "%d. ", i+1)
		printParticipantLine(out, m.Participant)
		fmt.Fprintf(out, "   relevance %.2f, similarity %.2f\n", m.RelevanceScore, m.SimilarityScore)
		if len(m.MatchedFields.Skills) > 0 {
			fmt.Fprintf(out, "   Skills: %s\n", strings.Join(m.MatchedFields.Skills, ", "))
		}
		if len(m.MatchedFields.Interests) > 0 {
			fmt.Fprintf(out, "   Interests: %s\n", strings.Join(m.MatchedFields.Interests, ", "))
		}
		if m.MatchedFields.Bio != "" {
			fmt.Fprintf(out, "   Bio: %s\n", truncate(m.MatchedFields.Bio, 100))
		}
	}

	if d := resp.Debug; d != nil {
		fmt.Fprintf(out, "\n%s\n", strings.Repeat("-", 40))
		fmt.Fprintf(out, "embedding %s: %dms\n", d.EmbeddingModel, d.EmbeddingGenerationTimeMs)
		fmt.Fprintf(out, "vector search: %dms\n", d.VectorSearchTimeMs)
		fmt.Fprintf(out, "llm %s: %dms, %d tokens\n", d.LLMModel, d.LLMGenerationTimeMs, d.LLMTokensUsed)
	}
	return nil
}
