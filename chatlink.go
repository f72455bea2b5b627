// Carry binary payloads over text chat channels
package main

import (
	"github.com/chatlink/chatlink/cmd"
	_ "github.com/chatlink/chatlink/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
