// Package version provides the version command.
package version

import (
	"github.com/chatlink/chatlink/cmd"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "version",
	Short: `Show the version number.`,
	Long: `Show the chatlink version number, the go version and the OS and
architecture it was built for.

For example:

    $ chatlink version
    chatlink v0.1.0
    - os/type: linux
    - os/arch: amd64
    - go/version: go1.20
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 0, command, args)
		cmd.ShowVersion()
	},
}
