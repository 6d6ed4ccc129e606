// Edit command changes a stored item in place.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

var (
	editType        string
	editAmount      int
	editDamage      int
	editName        string
	editClearName   bool
	editLore        []string
	editClearLore   bool
	editFlags       []string
	editUnflags     []string
	editUnbreakable bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a stored item",
	Long: `Edit loads an item, applies the requested changes and stores it again.
Only the flags given are applied.

Example:
  satchel edit <id> --name "Edge of Night" --lore "Forged in the dark" --lore "Second line"
  satchel edit <id> --flag HIDE_ENCHANTS --unbreakable
  satchel edit <id> --amount 16 --clear-name`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editType, "type", "", "change the material")
	f.IntVar(&editAmount, "amount", 1, "set the stack size")
	f.IntVar(&editDamage, "damage", 0, "set the damage value")
	f.StringVar(&editName, "name", "", "set the display name")
	f.BoolVar(&editClearName, "clear-name", false, "remove the display name")
	f.StringArrayVar(&editLore, "lore", nil, "set the lore, one flag per line")
	f.BoolVar(&editClearLore, "clear-lore", false, "remove the lore")
	f.StringSliceVar(&editFlags, "flag", nil, "add item flags")
	f.StringSliceVar(&editUnflags, "unflag", nil, "remove item flags")
	f.BoolVar(&editUnbreakable, "unbreakable", false, "set or clear the unbreakable tag")
}

func runEdit(cmd *cobra.Command, args []string) (err error) {
	id := args[0]
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

	stack, err := loadStack(stash, codec, id)
	if err != nil {
		return err
	}
	if err := applyEdits(cmd, platform, stack); err != nil {
		return userError(err)
	}
	if _, err := saveStack(stash, codec, id, stack); err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), codec.Serialize(stack))
}

// applyEdits applies the edit flags that were set on the command line.
func applyEdits(cmd *cobra.Command, p *item.Platform, s *item.Stack) error {
	changed := cmd.Flags().Changed

	if changed("type") {
		m, ok := p.Materials.Lookup(editType)
		if !ok {
			return fmt.Errorf("%w: %q", types.ErrUnknownMaterial, editType)
		}
		s.SetType(m)
	}
	if changed("amount") {
		s.SetAmount(editAmount)
	}
	if changed("damage") {
		s.SetDurability(editDamage)
	}
	if editClearName {
		s.SetDisplayName("")
	}
	if changed("name") {
		s.SetDisplayName(editName)
	}
	if editClearLore {
		s.SetLore(nil)
	}
	if changed("lore") {
		s.SetLoreLines(editLore...)
	}

	add, err := parseFlags(editFlags)
	if err != nil {
		return err
	}
	remove, err := parseFlags(editUnflags)
	if err != nil {
		return err
	}
	s.AddItemFlags(add...)
	s.RemoveItemFlags(remove...)

	if changed("unbreakable") {
		s.SetUnbreakable(editUnbreakable)
	}
	return nil
}

func parseFlags(names []string) ([]types.ItemFlag, error) {
	flags := make([]types.ItemFlag, 0, len(names))
	for _, name := range names {
		f, err := types.ParseItemFlag(name)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}
