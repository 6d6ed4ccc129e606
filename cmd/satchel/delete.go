// Delete command removes an item by ID.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		stash, err := attachStash()
		if err != nil {
			return err
		}
		defer detach(stash, &err)

		if err := stash.Delete(args[0]); err != nil {
			return storeError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
		return nil
	},
}
