package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

func ParticipantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "participants",
		Aliases: []string{"p"},
		Short:   "Browse the participant directory",
	}

	cmd.AddCommand(participantsListCmd())
	cmd.AddCommand(participantsGetCmd())
	cmd.AddCommand(participantsStatusCmd())

	return cmd
}

func participantsListCmd() *cobra.Command {
	var (
		name   string
		skill  string
		status string
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for k, v := range map[string]string{"name": name, "skill": skill, "status": status, "cursor": cursor} {
				if v != "" {
					q.Set(k, v)
				}
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			path := "/participants"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			var page handlers.ListParticipantsResponse
			if err := api.Get(cmd.Context(), path, &page); err != nil {
				return fmt.Errorf("failed to list participants: %w", err)
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, page)
			}
			if len(page.Participants) == 0 {
				fmt.Fprintln(out, "No participants found")
				return nil
			}
			for _, p := range page.Participants {
				printParticipantLine(out, p)
			}
			if page.HasMore && page.NextCursor != "" {
				fmt.Fprintf(out, "\nMore results available. Use --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filter by name substring")
	cmd.Flags().StringVar(&skill, "skill", "", "Filter by skill")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (green, yellow, red)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Page size (default 50, max 100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func participantsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <participant-id>",
		Short: "Show one participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var p handlers.ParticipantResponse
			if err := api.Get(cmd.Context(), fmt.Sprintf("/participants/%d", id), &p); err != nil {
				return fmt.Errorf("failed to get participant: %w", err)
			}

			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printParticipant(cmd.OutOrStdout(), &p)
			return nil
		},
	}
}

func participantsStatusCmd() *cobra.Command {
	var availability string

	cmd := &cobra.Command{
		Use:   "status <participant-id> <green|yellow|red>",
		Short: "Change a participant's traffic-light status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var p handlers.ParticipantResponse
			req := handlers.UpdateStatusRequest{Status: args[1], Availability: availability}
			if err := api.Put(cmd.Context(), fmt.Sprintf("/participants/%d/status", id), req, &p); err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}

			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Name, p.StatusLabel)
			return nil
		},
	}

	cmd.Flags().StringVar(&availability, "availability", "", "Free-text availability note")

	return cmd
}
