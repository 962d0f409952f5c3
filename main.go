package main

import (
	"os"

	"quill/service"
)

// exit is swapped in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to the CLI and exits with its code.
func RealMain() {
	exit(service.HandleCommand(os.Args[1:]))
}
