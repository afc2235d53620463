package cli

import "github.com/spf13/cobra"

// NewRootCommand assembles the ticketron command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "ticketron",
		Short:        "Ticketron - client tickets and the tasks that resolve them",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateUserCommand(),
		newLoadDataCommand(),
	)
	root.AddCommand(newGrantCommands()...)
	return root
}
