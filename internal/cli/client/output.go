package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/spf13/cobra"
)

func wantJSON(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("output")
	return outputJSON
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func statusBadge(p *handlers.ParticipantResponse) string {
	switch p.Status {
	case "green":
		return "[G]"
	case "yellow":
		return "[Y]"
	case "red":
		return "[R]"
	}
	return "[?]"
}

func printParticipantLine(w io.Writer, p *handlers.ParticipantResponse) {
	fmt.Fprintf(w, "%s %s (#%d)", statusBadge(p), p.Name, p.ID)
	if p.Telegram != "" {
		fmt.Fprintf(w, " %s", p.Telegram)
	}
	fmt.Fprintln(w)
}

func printParticipant(w io.Writer, p *handlers.ParticipantResponse) {
	printParticipantLine(w, p)
	fmt.Fprintf(w, "Status: %s", p.StatusLabel)
	if p.Availability != "" {
		fmt.Fprintf(w, " (%s)", p.Availability)
	}
	fmt.Fprintln(w)

	fields := []struct{ label, value string }{
		{"Email", p.Email},
		{"LinkedIn", p.LinkedIn},
		{"Location", p.Location},
		{"Bio", p.Bio},
		{"Skills", strings.Join(append(append([]string{}, p.Skills...), p.ParsedSkills...), ", ")},
		{"Interests", strings.Join(p.Interests, ", ")},
		{"Looking for", strings.Join(p.LookingFor, ", ")},
		{"Can help", p.CanHelp},
		{"Needs help", p.NeedsHelp},
	}
	if p.HasStartup {
		fields = append(fields, struct{ label, value string }{"Startup", strings.TrimSpace(p.StartupName + " " + p.StartupStage)})
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "%s: %s\n", f.label, f.value)
		}
	}
}
