package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/cloo-solutions/communityos/internal/config"
	"github.com/cloo-solutions/communityos/internal/dataset"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/storage"
	"github.com/spf13/cobra"
)

var errDatasetInvalid = errors.New("dataset validation failed")

func DatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Validate, back up and export participant datasets",
	}

	cmd.AddCommand(DatasetValidateCmd())
	cmd.AddCommand(DatasetBackupCmd())
	cmd.AddCommand(DatasetExportCmd())

	return cmd
}

func DatasetValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|s3://bucket/key>",
		Short: "Check a seed file for required fields and types",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetValidate,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runDatasetValidate(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	if storage.IsURI(args[0]) {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	data, err := readSource(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}

	report := dataset.Validate(data)
	outputFormat, _ := cmd.Flags().GetString("output")
	if err := printReport(cmd.OutOrStdout(), outputFormat, args[0], report); err != nil {
		return err
	}
	if !report.Valid() {
		return errDatasetInvalid
	}
	return nil
}

func printReport(w io.Writer, outputFormat, source string, report *dataset.Report) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if report.Valid() {
		fmt.Fprintf(w, "%s: %d participants, valid\n", source, report.Count)
		return nil
	}
	fmt.Fprintf(w, "%s: %d errors\n", source, len(report.Errors))
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	return nil
}

func DatasetBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup <file>",
		Short: "Back up a seed file",
		Long: `Copy a seed file to a timestamped backup.

The backup goes to the S3 bucket under backups/ when S3 is configured,
otherwise to the local backup directory.`,
		Args: cobra.ExactArgs(1),
		RunE: runDatasetBackup,
	}

	cmd.Flags().String("dir", dataset.DefaultBackupDir, "Local backup directory")
	cmd.Flags().Bool("local", false, "Always write the backup locally")

	return cmd
}

func runDatasetBackup(cmd *cobra.Command, args []string) error {
	path := args[0]
	now := time.Now()
	local, _ := cmd.Flags().GetBool("local")

	if !local {
		if cfg, err := config.Load(); err == nil && cfg.HasS3() {
			data, err := readSource(cmd.Context(), nil, path)
			if err != nil {
				return err
			}
			client, err := newS3Client(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			key := storage.BackupPrefix + dataset.BackupName(path, now)
			if err := client.PutObject(cmd.Context(), key, data, "application/json"); err != nil {
				return fmt.Errorf("failed to upload backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to s3://%s/%s\n", client.Bucket(), key)
			return nil
		}
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == dataset.DefaultBackupDir {
		dir = filepath.Join(filepath.Dir(path), dataset.DefaultBackupDir)
	}
	dst, err := dataset.BackupFile(path, dir, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", dst)
	return nil
}

func DatasetExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|s3://bucket/key>",
		Short: "Write every participant in the directory to a seed file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetExport,
	}
}

func runDatasetExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	profiles, err := repository.NewParticipantRepository(rt.pool).ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}

	var buf bytes.Buffer
	if err := dataset.Encode(&buf, profiles); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := writeSource(ctx, rt.cfg, args[0], buf.Bytes()); err != nil {
		return err
	}

	rt.logger.WithField("participants", len(profiles)).Info("dataset exported")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d participants to %s\n", len(profiles), args[0])
	return nil
}
