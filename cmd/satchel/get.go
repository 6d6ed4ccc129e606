// Get command retrieves an item by ID.
package main

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an item by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	platform, err := loadPlatform()
	if err != nil {
		return err
	}

	stash, err := attachStash()
	if err != nil {
		return err
	}
	defer detach(stash, &err)

	e, err := stash.Get(args[0])
	if err != nil {
		return storeError(err)
	}
	return writeOutput(cmd.OutOrStdout(), viewOf(e, newCodec(platform)))
}
