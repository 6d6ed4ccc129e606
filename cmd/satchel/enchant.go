// Enchant command adds or removes an enchantment on a stored item.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

var (
	enchantUnsafe bool
	enchantRemove bool
)

var enchantCmd = &cobra.Command{
	Use:   "enchant <id> <enchantment> [level]",
	Short: "Add or remove an enchantment",
	Long: `Enchant sets an enchantment on a stored item. Names are matched
case-insensitively and legacy aliases are accepted.

By default the enchantment must apply to the item and the level must lie in
its allowed range. --unsafe skips both checks.

Example:
  satchel enchant <id> sharpness 5
  satchel enchant <id> DAMAGE_ALL 12 --unsafe
  satchel enchant <id> sharpness --remove`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runEnchant,
}

func init() {
	enchantCmd.Flags().BoolVar(&enchantUnsafe, "unsafe", false, "skip applicability and level checks")
	enchantCmd.Flags().BoolVar(&enchantRemove, "remove", false, "remove the enchantment")
}

func runEnchant(cmd *cobra.Command, args []string) (err error) {
	id := args[0]
	level := 1
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return userError(fmt.Errorf("level %q is not a number", args[2]))
		}
		level = n
	}

	platform, err := loadPlatform()
	if err != nil {
		return err
	}
	ench, ok := platform.Enchantments.Lookup(args[1])
	if !ok {
		return userError(fmt.Errorf("%w: %q", types.ErrUnknownEnchantment, args[1]))
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

	out := cmd.OutOrStdout()
	switch {
	case enchantRemove:
		prev := stack.RemoveEnchantment(ench)
		if prev == 0 {
			fmt.Fprintf(out, "%s has no %s\n", id, ench)
			return nil
		}
		fmt.Fprintf(out, "removed %s %d\n", ench, prev)
	case enchantUnsafe:
		stack.AddUnsafeEnchantment(ench, level)
		fmt.Fprintf(out, "added %s %d\n", ench, level)
	default:
		if stack.HasConflictingEnchant(ench) {
			log.Warn("enchantment conflicts with one already present", "enchantment", ench)
		}
		if err := stack.AddEnchantment(ench, level); err != nil {
			return userError(err)
		}
		fmt.Fprintf(out, "added %s %d\n", ench, level)
	}

	_, err = saveStack(stash, codec, id, stack)
	return err
}
