// Package decode provides the decode command.
package decode

import (
	"bufio"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/chatlink/chatlink/cmd"
	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/chatlink/chatlink/link"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "decode [file]",
	Short: `Decode base32768 text back to binary data.`,
	Long: `
Reads base32768 text from the file, or standard input if none is given
or it is "-", and writes the decoded bytes to standard output.

Trailing whitespace such as the newline written by encode is ignored.
Anything else which isn't exactly what encode produces is refused with
a description of what is wrong and where, for example

    $ echo '媔Aʟ' | chatlink decode
    Failed to decode: character 2 ('A', U+0041) is not part of the encoding - the text was changed in transit
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
			n, err := Decode(out, in)
			if err != nil {
				return err
			}
			link.Infof(nil, "Decoded %s", humanize.Bytes(uint64(n)))
			return out.Flush()
		})
	},
}

// Decode reads base32768 text from in and writes the bytes to out
// returning the number written
func Decode(out io.Writer, in io.Reader) (int, error) {
	text, err := ioutil.ReadAll(in)
	if err != nil {
		return 0, err
	}
	data, err := base32768.Decode(strings.TrimRight(string(text), " \t\r\n"))
	if err != nil {
		return 0, err
	}
	return out.Write(data)
}
