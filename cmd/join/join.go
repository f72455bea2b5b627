// Package join provides the join command.
package join

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/chatlink/chatlink/cmd"
	"github.com/chatlink/chatlink/lib/chat"
	"github.com/chatlink/chatlink/lib/errcount"
	"github.com/chatlink/chatlink/link"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// maxLine is the longest chat line which will be read
const maxLine = 1 << 20

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "join [file]",
	Short: `Join chat messages back into payloads.`,
	Long: `
Reads chat lines from the file, or standard input if none is given or
it is "-", and writes every payload they complete to standard output.

Lines which aren't chatlink messages are ignored so a whole chat log
can be fed in. Damaged messages are reported and skipped, and the
command fails at the end if there were any or if a transfer is still
missing parts when the input ends.
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
			_, err = Join(ctx, out, in)
			if err != nil {
				return err
			}
			return out.Flush()
		})
	},
}

// Join reads chat lines from in and writes the payloads they make to
// out returning how many there were
func Join(ctx context.Context, out io.Writer, in io.Reader) (payloads int, err error) {
	receiver := chat.NewReceiver(ctx)
	var writeErr error
	receiver.Listen(func(data []byte) {
		payloads++
		link.Infof(nil, "Received payload %d of %s", payloads, humanize.Bytes(uint64(len(data))))
		if writeErr == nil {
			_, writeErr = out.Write(data)
		}
	})

	bad := errcount.New()
	lineNo := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		lineNo++
		if err := receiver.Handle(scanner.Text()); err != nil {
			link.Errorf(nil, "line %d: %s", lineNo, cmd.Describe(err))
			bad.Add(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return payloads, errors.Wrap(err, "failed to read chat")
	}
	if writeErr != nil {
		return payloads, errors.Wrap(writeErr, "failed to write payload")
	}
	if err := bad.Err("bad messages"); err != nil {
		return payloads, err
	}
	if n := receiver.Pending(); n > 0 {
		return payloads, errors.Wrapf(cmd.ErrIncomplete, "%d transfers", n)
	}
	return payloads, nil
}
