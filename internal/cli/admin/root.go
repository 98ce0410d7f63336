package admin

import "github.com/spf13/cobra"

// AddCommands registers every communityd subcommand on root.
func AddCommands(root *cobra.Command) {
	root.AddCommand(ServeCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(SeedCmd())
	root.AddCommand(EmbedCmd())
	root.AddCommand(DatasetCmd())
}
