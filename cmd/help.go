package cmd

import (
	"context"
	"os"

	"github.com/chatlink/chatlink/lib/exitcode"
	"github.com/chatlink/chatlink/link"
	"github.com/chatlink/chatlink/link/config/configflags"
	"github.com/spf13/cobra"
)

// Root is the main chatlink command
var Root = &cobra.Command{
	Use:   "chatlink",
	Short: "Carry binary payloads over a text chat channel",
	Long: `
Chatlink turns binary data into text which survives chat channels that
only carry Unicode text, and back again.

The text uses base32768: every 15 bits of input become one character
from a repertoire of 32768 characters chosen to be printable, not
whitespace and unchanged by Unicode normalisation, so the text is about
half the length of base64 when counted in characters.

Use encode and decode for the raw text encoding, split and join to cut
payloads into chat sized messages and put them back together.
`,
	Run: func(command *cobra.Command, args []string) {
		if version {
			ShowVersion()
			os.Exit(0)
		}
		_ = command.Usage()
		os.Exit(exitcode.UsageError)
	},
}

// setupRootCommand adds the global flags to rootCmd
func setupRootCommand(rootCmd *cobra.Command) {
	ci := link.GetConfig(context.Background())
	configflags.AddFlags(ci, rootCmd.PersistentFlags())
	rootCmd.Flags().BoolVarP(&version, "version", "V", false, "Print the version number")
	cobra.OnInitialize(initConfig)
}
