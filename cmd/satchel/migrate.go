// Migrate command rewrites stored records in canonical form.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite stored records in canonical form",
	Long: `Migrate decodes every stored record and stores it again in canonical
form. Records written by older generations, such as those with a top-level
enchantments map, are converted to the metadata form. Records that do not
decode are reported and left unchanged.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "report changes without writing")
}

func runMigrate(cmd *cobra.Command, args []string) (err error) {
	platform, err := loadPlatform()
	if err != nil {
		return err
	}
	codec := newCodec(platform)

	stash, err := attachStash()
	if err != nil {
		return err
	}
	defer detach(stash, &err)

	entries, err := stash.Fetch(nil)
	if err != nil {
		return storeError(err)
	}

	out := cmd.OutOrStdout()
	var rewritten, skipped int
	for _, e := range entries {
		stack, err := codec.Deserialize(e.Record)
		if err == nil && stack.Type().IsNone() {
			err = fmt.Errorf("unknown type %q", e.Type)
		}
		if err != nil {
			log.Warn("record does not decode", "id", e.ItemID, "error", err)
			skipped++
			continue
		}
		canonical := codec.Serialize(stack)

		before, err := json.Marshal(e.Record)
		if err != nil {
			return sysError(err)
		}
		after, err := json.Marshal(canonical)
		if err != nil {
			return sysError(err)
		}
		if bytes.Equal(before, after) {
			continue
		}

		rewritten++
		fmt.Fprintf(out, "%s: %s -> %s\n", e.ItemID, before, after)
		if migrateDryRun {
			continue
		}
		if _, err := stash.Put(e.ItemID, canonical); err != nil {
			return storeError(err)
		}
	}

	verb := "rewrote"
	if migrateDryRun {
		verb = "would rewrite"
	}
	fmt.Fprintf(out, "%s %d of %d items (%d undecodable)\n", verb, rewritten, len(entries), skipped)
	return nil
}
