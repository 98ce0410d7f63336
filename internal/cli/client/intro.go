package client

import (
	"errors"
	"fmt"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

func IntroCmd() *cobra.Command {
	var (
		to          int64
		description string
	)

	cmd := &cobra.Command{
		Use:   "intro <participant-id>",
		Short: "Draft an introduction message",
		Long:  "Draft a short message introducing a participant to another participant (--to) or to an audience (--audience).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if to == 0 && description == "" {
				return errors.New("one of --to or --audience is required")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp handlers.IntroResponse
			req := handlers.IntroRequest{SourceID: id, TargetID: to, TargetDescription: description}
			if err := api.Post(cmd.Context(), "/intro", req, &resp); err != nil {
				return fmt.Errorf("intro failed: %w", err)
			}

			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}

	cmd.Flags().Int64Var(&to, "to", 0, "Participant id to introduce to")
	cmd.Flags().StringVar(&description, "audience", "", "Describe who the introduction is for")

	return cmd
}
