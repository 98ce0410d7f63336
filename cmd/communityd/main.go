package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/communityos/internal/cli"
	"github.com/cloo-solutions/communityos/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "communityd",
		Short: "Community directory daemon and admin CLI",
		Long:  "Run the community directory API server, apply migrations, seed participants and generate embeddings",
	}

	cli.AddHelpJSONFlag(rootCmd)
	admin.AddCommands(rootCmd)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if handled, err := cli.HandleHelpJSON(os.Stdout, rootCmd, os.Args[1:]); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
