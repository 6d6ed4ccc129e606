// Init command for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/internal/paths"
)

var initUser bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration and an empty stash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		// PersistentPreRunE has already written a default config.yaml.
		configDir, err := resolveConfigDir()
		if err != nil {
			return sysError(err)
		}

		if initUser && flagDataDir == "" {
			dir, err := paths.DefaultDataDir()
			if err != nil {
				return sysError(err)
			}
			flagDataDir = dir
		}

		stash, err := attachStash()
		if err != nil {
			return err
		}
		defer detach(stash, &err)

		dataDir, err := resolveDataDir()
		if err != nil {
			return sysError(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "satchel initialized")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  data:  ", dataDir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initUser, "user", false, "place the stash in the per-user data directory")
}
