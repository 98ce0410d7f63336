package admin

import (
	"fmt"

	"github.com/cloo-solutions/communityos/internal/dataset"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file|s3://bucket/key>",
		Short: "Load participants from a seed file",
		Long: `Validate a seed file, upsert every participant in one transaction and
queue an embedding job for each of them.`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	data, err := readSource(ctx, rt.cfg, args[0])
	if err != nil {
		return err
	}

	profiles, err := dataset.Profiles(data)
	if err != nil {
		return err
	}

	importSvc := service.NewImportService(repository.NewTxRunner(rt.pool))
	result, err := importSvc.Import(ctx, profiles)
	if err != nil {
		return fmt.Errorf("failed to import participants: %w", err)
	}

	rt.logger.WithFields(logrus.Fields{
		"source":         args[0],
		"participants":   result.Participants,
		"embedding_jobs": result.EmbeddingJobs,
	}).Info("seed complete")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d participants, queued %d embedding jobs\n",
		result.Participants, result.EmbeddingJobs)
	return nil
}
