// Package cmd implements the chatlink command
//
// It is in a sub package so it's internals can be re-used elsewhere
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/chatlink/chatlink/lib/chat"
	"github.com/chatlink/chatlink/lib/exitcode"
	"github.com/chatlink/chatlink/lib/payload"
	"github.com/chatlink/chatlink/lib/readers"
	"github.com/chatlink/chatlink/link"
	"github.com/chatlink/chatlink/link/config/configflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Globals
var (
	version bool
	// Errors
	errorNotEnoughArguments = errors.New("not enough arguments")
	errorTooManyArguments   = errors.New("too many arguments")
)

// ErrIncomplete is returned when the input ends with transfers
// still missing parts
var ErrIncomplete = errors.New("input ended with incomplete transfers")

// ShowVersion prints the version to stdout
func ShowVersion() {
	fmt.Printf("chatlink %s\n", link.Version)
	fmt.Printf("- os/type: %s\n", runtime.GOOS)
	fmt.Printf("- os/arch: %s\n", runtime.GOARCH)
	fmt.Printf("- go/version: %s\n", runtime.Version())
}

// NewContext returns a context which is cancelled when the user
// interrupts chatlink
func NewContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// NewInput opens the input named in args, stdin if there is none or
// it is "-". Reads stop with an error once ctx is done.
func NewInput(ctx context.Context, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(readers.NewContextReader(ctx, os.Stdin)), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	return struct {
		io.Reader
		io.Closer
	}{readers.NewContextReader(ctx, f), f}, nil
}

// Run the function and exit with an exit code describing its error
func Run(cmd *cobra.Command, f func() error) {
	cmdErr := f()
	if cmdErr != nil {
		log.Printf("Failed to %s: %s", cmd.Name(), Describe(cmdErr))
	}
	resolveExitCode(cmdErr)
}

// CheckArgs checks there are enough arguments and prints a message if not
func CheckArgs(MinArgs, MaxArgs int, cmd *cobra.Command, args []string) {
	if len(args) < MinArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments minimum: you provided %d non flag arguments: %q\n", cmd.Name(), MinArgs, len(args), args)
		resolveExitCode(errorNotEnoughArguments)
	} else if len(args) > MaxArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments maximum: you provided %d non flag arguments: %q\n", cmd.Name(), MaxArgs, len(args), args)
		resolveExitCode(errorTooManyArguments)
	}
}

// initConfig is run by cobra after initialising the flags
func initConfig() {
	ctx := context.Background()
	ci := link.GetConfig(ctx)

	// Finish parsing any command line flags
	if err := configflags.SetFlags(ci, Root.PersistentFlags()); err != nil {
		log.Fatalf("Bad flags: %v", err)
	}

	// Start the logger
	link.InitLogging()

	// Write the args for debug purposes
	link.Debugf("chatlink", "Version %q starting with parameters %q", link.Version, os.Args)
}

// exitCode works out the exit code for err
func exitCode(err error) int {
	var corrupt *base32768.CorruptInputError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, errorNotEnoughArguments), errors.Is(err, errorTooManyArguments),
		errors.Is(err, chat.ErrTooManyParts):
		return exitcode.UsageError
	case errors.Is(err, os.ErrNotExist):
		return exitcode.FileNotFound
	case errors.As(err, &corrupt),
		errors.Is(err, chat.ErrBadHeader),
		errors.Is(err, chat.ErrInconsistentCount),
		errors.Is(err, payload.ErrUnknownMethod),
		errors.Is(err, payload.ErrEmptyFrame),
		errors.Is(err, payload.ErrTooLarge):
		return exitcode.CorruptInput
	case errors.Is(err, ErrIncomplete):
		return exitcode.Incomplete
	}
	return exitcode.UncategorizedError
}

func resolveExitCode(err error) {
	os.Exit(exitCode(err))
}

// Main runs chatlink interpreting flags and commands out of os.Args
func Main() {
	setupRootCommand(Root)
	if err := Root.Execute(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}
