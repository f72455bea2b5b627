// Package link holds the configuration and logging shared by the
// chatlink commands and libraries.
package link

import (
	"context"
	"strings"
	"time"

	"github.com/chatlink/chatlink/lib/payload"
)

// ConfigInfo is the chatlink config options
type ConfigInfo struct {
	LogLevel        LogLevel
	UseJSONLog      bool
	MessageLength   int     // max code points in a chat message
	MessageRate     float64 // messages per second, 0 for no limit
	MessageBurst    int
	Compression     payload.Method
	TransferTimeout time.Duration // how long a partial transfer may wait for its parts
}

// NewConfig creates a new config with everything set to the default
// value.  These are the ultimate defaults and are overridden by the
// command line flags.
func NewConfig() *ConfigInfo {
	c := new(ConfigInfo)

	// Set any values which aren't the zero for the type
	c.LogLevel = LogLevelNotice
	c.MessageLength = 150
	c.MessageRate = 2
	c.MessageBurst = 1
	c.Compression = payload.None
	c.TransferTimeout = 2 * time.Minute

	return c
}

type configContextKeyType struct{}

// Context key for config
var configContextKey = configContextKeyType{}

// global config
var globalConfig = NewConfig()

// GetConfig returns the global or context sensitive config
func GetConfig(ctx context.Context) *ConfigInfo {
	if ctx == nil {
		return globalConfig
	}
	c := ctx.Value(configContextKey)
	if c == nil {
		return globalConfig
	}
	return c.(*ConfigInfo)
}

// AddConfig returns a mutable config structure based on a shallow
// copy of that found in ctx and returns a new context with that added
// to it.
func AddConfig(ctx context.Context) (context.Context, *ConfigInfo) {
	c := GetConfig(ctx)
	cCopy := new(ConfigInfo)
	*cCopy = *c
	newCtx := context.WithValue(ctx, configContextKey, cCopy)
	return newCtx, cCopy
}

// OptionToEnv converts an option name, e.g. "message-rate" into an
// environment name "CHATLINK_MESSAGE_RATE"
func OptionToEnv(name string) string {
	return "CHATLINK_" + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}
