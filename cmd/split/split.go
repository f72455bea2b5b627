// Package split provides the split command.
package split

import (
	"context"
	"io"
	"io/ioutil"
	"os"

	"github.com/chatlink/chatlink/cmd"
	"github.com/chatlink/chatlink/lib/chat"
	"github.com/chatlink/chatlink/lib/payload"
	"github.com/chatlink/chatlink/link"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "split [file]",
	Short: `Split a payload into chat messages.`,
	Long: `
Reads the file, or standard input if none is given or it is "-",
compresses it with --compress, encodes it and writes it out as chat
messages, one per line, none longer than --message-length characters.

Lines are written no faster than --message-rate per second so the
output can be piped straight into a chat client.

Each message starts with § and a short header carrying the transfer
id and the part number, so join can put the payload back together
whatever order the messages arrive in and whatever chat is mixed in.
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
			_, err = Split(ctx, os.Stdout, in)
			return err
		})
	},
}

// lineTransport writes each chat message as a line
type lineTransport struct {
	out io.Writer
}

// SendMessage writes text and a newline
func (t lineTransport) SendMessage(ctx context.Context, text string) error {
	_, err := io.WriteString(t.out, text+"\n")
	return err
}

// Split reads a payload from in and writes it to out as chat messages
// returning the transfer id
func Split(ctx context.Context, out io.Writer, in io.Reader) (uint32, error) {
	data, err := ioutil.ReadAll(io.LimitReader(in, payload.MaxDecodedSize+1))
	if err != nil {
		return 0, err
	}
	if len(data) > payload.MaxDecodedSize {
		return 0, errors.Wrapf(payload.ErrTooLarge, "input is over %s", humanize.IBytes(payload.MaxDecodedSize))
	}
	id, err := chat.NewSender(ctx, lineTransport{out: out}).Send(ctx, data)
	if err != nil {
		return id, err
	}
	link.Infof(nil, "Sent %s as transfer %08x", humanize.Bytes(uint64(len(data))), id)
	return id, nil
}
