package cmd

import (
	"github.com/spf13/cobra"

	"river-go/sandbox"
)

// sandboxInitCmd is the re-exec entry point Sandbox.Spawn launches itself
// as, inheriting the sync pipe on fd 3. It is hidden: nothing outside the
// judge process itself should invoke it directly.
var sandboxInitCmd = &cobra.Command{
	Use:    sandbox.ReexecSubcommand,
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sandbox.ChildMain()
	},
}

func init() {
	rootCmd.AddCommand(sandboxInitCmd)
}
