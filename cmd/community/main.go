package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/communityos/internal/cli"
	"github.com/cloo-solutions/communityos/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := client.RootCmd(version)

	if handled, err := cli.HandleHelpJSON(os.Stdout, rootCmd, os.Args[1:]); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
