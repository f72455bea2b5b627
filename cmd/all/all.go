// Package all imports all the commands
package all

import (
	// Active commands
	_ "github.com/chatlink/chatlink/cmd"
	_ "github.com/chatlink/chatlink/cmd/decode"
	_ "github.com/chatlink/chatlink/cmd/encode"
	_ "github.com/chatlink/chatlink/cmd/join"
	_ "github.com/chatlink/chatlink/cmd/split"
	_ "github.com/chatlink/chatlink/cmd/version"
)
