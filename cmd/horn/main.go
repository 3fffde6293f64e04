package main

import (
	"fmt"
	"os"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCLI builds a fresh command tree per call so tests can run commands
// side by side without sharing flag state.
func runCLI(args []string) error {
	root := newRootCmd()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.Execute()
}
