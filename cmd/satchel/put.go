// Put command stores an item record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

var putID string

var putCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Store an item from a YAML or JSON record",
	Long: `Put reads an item record from file (or stdin when file is omitted or "-"),
decodes it against the catalog and stores its canonical form.

Example:
  satchel put sword.yaml
  echo '{type: DIAMOND_SWORD, meta: {meta-type: UNSPECIFIC, display-name: Edge}}' | satchel put
  satchel put --id 0190f5c1-... sword.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putID, "id", "", "replace the item with this ID instead of creating one")
}

func runPut(cmd *cobra.Command, args []string) (err error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	rec, err := readRecord(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	platform, err := loadPlatform()
	if err != nil {
		return err
	}
	codec := newCodec(platform)
	stack, err := codec.Deserialize(rec)
	if err != nil {
		return userError(err)
	}
	if stack.Type().IsNone() {
		name, _ := rec.Get(item.KeyType)
		return userError(fmt.Errorf("%w: %v", types.ErrUnknownMaterial, name))
	}

	stash, err := attachStash()
	if err != nil {
		return err
	}
	defer detach(stash, &err)

	id, err := saveStack(stash, codec, putID, stack)
	if err != nil {
		return err
	}
	log.Debug("item stored", "id", id, "item", stack.String())
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
