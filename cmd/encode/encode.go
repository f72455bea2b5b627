// Package encode provides the encode command.
package encode

import (
	"bufio"
	"io"
	"os"

	"github.com/chatlink/chatlink/cmd"
	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/chatlink/chatlink/link"
	"github.com/chatlink/chatlink/link/config/flags"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	noNewline = false
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.BoolVarP(cmdFlags, &noNewline, "no-newline", "n", noNewline, "Don't write a newline after the text")
}

var commandDefinition = &cobra.Command{
	Use:   "encode [file]",
	Short: `Encode binary data as base32768 text.`,
	Long: `
Reads the file, or standard input if none is given or it is "-", and
writes it to standard output as base32768 text followed by a newline.

Every 15 bits of input become one character so the output has 8n/15
characters, rounded up, for n bytes of input.

    $ printf 'Hello, world!' | chatlink encode
    䩲腻㐥桧懛瀑溣
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 1, command, args)
		cmd.Run(command, func() error {
			ctx, cancel := cmd.NewContext()
			defer cancel()
			in, err := cmd.NewInput(ctx, args)
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()
			out := bufio.NewWriter(os.Stdout)
			n, err := Encode(out, in, !noNewline)
			if err != nil {
				return err
			}
			link.Infof(nil, "Encoded %s into %d characters", humanize.Bytes(uint64(n)), base32768.EncodedLen(int(n)))
			return out.Flush()
		})
	},
}

// Encode copies in to out as base32768 text returning the number of
// bytes read
func Encode(out io.Writer, in io.Reader, newline bool) (int64, error) {
	enc := base32768.NewEncoder(out)
	n, err := io.Copy(enc, in)
	if err != nil {
		return n, err
	}
	if err = enc.Close(); err != nil {
		return n, err
	}
	if newline {
		_, err = io.WriteString(out, "\n")
	}
	return n, err
}
