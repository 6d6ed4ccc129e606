// Package main provides the satchel CLI: a local stash of item stacks.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "satchel:", err)
		os.Exit(exitCode(err))
	}
}
