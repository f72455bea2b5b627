// Package configflags defines the flags used by chatlink.  It is
// decoupled into a separate package so it can be replaced.
package configflags

// Options set by command line flags
import (
	"github.com/chatlink/chatlink/link"
	"github.com/chatlink/chatlink/link/config/flags"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var (
	// these will get interpreted into ci via SetFlags() below
	verbose int
	quiet   bool
)

// AddFlags adds the non command specific flags to the command
func AddFlags(ci *link.ConfigInfo, flagSet *pflag.FlagSet) {
	// NB defaults which aren't the zero for the type should be set in link/config.go NewConfig
	flags.CountVarP(flagSet, &verbose, "verbose", "v", "Print lots more stuff (repeat for more)")
	flags.BoolVarP(flagSet, &quiet, "quiet", "q", false, "Print as little stuff as possible")
	flags.FVarP(flagSet, &ci.LogLevel, "log-level", "", "Log level DEBUG|INFO|NOTICE|ERROR")
	flags.BoolVarP(flagSet, &ci.UseJSONLog, "use-json-log", "", ci.UseJSONLog, "Use json log format")
	flags.IntVarP(flagSet, &ci.MessageLength, "message-length", "", ci.MessageLength, "Max code points in one chat message")
	flags.Float64VarP(flagSet, &ci.MessageRate, "message-rate", "", ci.MessageRate, "Chat messages per second, 0 for unlimited")
	flags.IntVarP(flagSet, &ci.MessageBurst, "message-burst", "", ci.MessageBurst, "Chat messages which may be sent without waiting")
	flags.FVarP(flagSet, &ci.Compression, "compress", "", "Compression for payloads none|snappy|zstd")
	flags.DurationVarP(flagSet, &ci.TransferTimeout, "transfer-timeout", "", ci.TransferTimeout, "Forget partial transfers after this long")
}

// SetFlags converts any flags into config which weren't straight forward
func SetFlags(ci *link.ConfigInfo, flagSet *pflag.FlagSet) error {
	if verbose >= 2 {
		ci.LogLevel = link.LogLevelDebug
	} else if verbose >= 1 {
		ci.LogLevel = link.LogLevelInfo
	}
	if quiet {
		if verbose > 0 {
			return errors.New("can't set -v and -q")
		}
		ci.LogLevel = link.LogLevelError
	}
	logLevelFlag := flagSet.Lookup("log-level")
	if logLevelFlag != nil && logLevelFlag.Changed {
		if verbose > 0 {
			return errors.New("can't set -v and --log-level")
		}
		if quiet {
			return errors.New("can't set -q and --log-level")
		}
	}
	if ci.MessageLength < 1 {
		return errors.Errorf("--message-length must be positive, got %d", ci.MessageLength)
	}
	if ci.MessageRate < 0 {
		return errors.Errorf("--message-rate can't be negative, got %g", ci.MessageRate)
	}
	if ci.MessageBurst < 1 {
		ci.MessageBurst = 1
	}
	return nil
}
