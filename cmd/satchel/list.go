// List command queries stored items.
package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

var (
	listType   string
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored items, newest first",
	Long: `List fetches stored items, newest first.

Example:
  satchel list
  satchel list --type DIAMOND_SWORD
  satchel list --limit 10 --offset 20
  satchel list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by material name")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of results (0 = no limit)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of results to skip")
}

func runList(cmd *cobra.Command, args []string) (err error) {
	platform, err := loadPlatform()
	if err != nil {
		return err
	}

	stash, err := attachStash()
	if err != nil {
		return err
	}
	defer detach(stash, &err)

	filter := map[string]any{}
	if listType != "" {
		filter["type"] = listType
	}
	if listLimit > 0 {
		filter["limit"] = listLimit
	}
	if listOffset > 0 {
		filter["offset"] = listOffset
	}

	entries, err := stash.Fetch(filter)
	if err != nil {
		return storeError(err)
	}

	codec := newCodec(platform)
	if flagJSON {
		views := make([]entryView, len(entries))
		for i, e := range entries {
			views[i] = viewOf(e, codec)
		}
		return writeOutput(cmd.OutOrStdout(), views)
	}
	printEntryTable(cmd.OutOrStdout(), entries, codec)
	return nil
}

// printEntryTable prints entries in a human-readable table.
func printEntryTable(w io.Writer, entries []*types.Entry, codec *item.Codec) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tITEM\tUPDATED")
	for _, e := range entries {
		v := viewOf(e, codec)
		summary := v.Summary
		if summary == "" {
			summary = "(undecodable)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ItemID, v.Type, summary, v.UpdatedAt)
	}
	tw.Flush()
}
