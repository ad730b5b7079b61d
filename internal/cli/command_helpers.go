package cli

import "github.com/spf13/cobra"

// newGroupCommand builds a command that only dispatches to subcommands. Run
// bare it prints help; an unknown subcommand is an error rather than a
// silent help screen.
func newGroupCommand(use, short string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(subcommands...)
	return cmd
}
