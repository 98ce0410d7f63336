package admin

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cloo-solutions/communityos/internal/jobs"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/spf13/cobra"
)

func EmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed [participant-id...]",
		Short: "Generate participant embeddings now",
		Long: `Generate embeddings synchronously, in batches of 10.

With no arguments only participants without an embedding are processed.
Use --all to regenerate every embedding.`,
		RunE: runEmbed,
	}

	cmd.Flags().Bool("all", false, "Regenerate embeddings for every participant")

	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid participant id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	if all && len(args) > 0 {
		return errors.New("--all cannot be combined with participant ids")
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.cfg.HasOpenAI() {
		return errors.New("COMMUNITY_OPENAI_API_KEY is required to generate embeddings")
	}

	participantRepo := repository.NewParticipantRepository(rt.pool)
	switch {
	case all:
		ids, err = participantRepo.ListIDs(ctx)
	case len(ids) == 0:
		ids, err = participantRepo.ListIDsMissingEmbedding(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "All participants already have embeddings")
		return nil
	}

	worker, err := jobs.NewEmbeddingWorker(
		repository.NewEmbeddingJobRepository(rt.pool),
		service.NewEmbeddingService(newOpenAIClient(rt.cfg), participantRepo),
		jobs.WithPoolSize(rt.cfg.EmbeddingWorkers),
		jobs.WithLogger(rt.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create embedding worker: %w", err)
	}
	defer worker.Release()

	result := worker.EmbedParticipants(ctx, ids)
	return printBatchResult(cmd, result)
}

func printBatchResult(cmd *cobra.Command, result *jobs.BatchResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Embedded %d of %d participants\n", result.Succeeded, result.Total)
	if len(result.Failed) == 0 {
		return nil
	}

	failed := make([]int64, 0, len(result.Failed))
	for id := range result.Failed {
		failed = append(failed, id)
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	for _, id := range failed {
		fmt.Fprintf(out, "  %d: %v\n", id, result.Failed[id])
	}
	return fmt.Errorf("%d embeddings failed", len(result.Failed))
}
