package item

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Meta returns a copy of the stack's metadata. When none is set it returns
// an empty block of the material's kind. The copy is detached: changes to
// it take effect only through SetMeta.
func (s *Stack) Meta() *Meta {
	if s.meta != nil {
		return s.meta.Clone()
	}
	return s.factory().NewMeta(s.typ)
}

// HasMeta reports whether any metadata is set.
func (s *Stack) HasMeta() bool {
	return s.meta != nil
}

// SetMeta commits meta to the stack; nil clears it. It returns an error
// wrapping ErrInvalidArgument and ErrForeignMeta when meta was not produced
// by this platform's factory, and false without touching the stack when
// meta is not applicable to the current material. Empty metadata is stored
// as no metadata.
func (s *Stack) SetMeta(meta *Meta) (bool, error) {
	if meta == nil {
		s.meta = nil
		return true, nil
	}
	f := s.factory()
	if !f.Owns(meta) {
		return false, fmt.Errorf("%w: %w", types.ErrInvalidArgument, types.ErrForeignMeta)
	}
	if !f.IsApplicable(meta, s.typ) {
		return false, nil
	}
	converted := f.AsMetaFor(meta, s.typ)
	if f.IsEmpty(converted) {
		s.meta = nil
	} else {
		s.meta = converted
	}
	return true, nil
}

// update runs the read, mutate, commit cycle. The block handed to fn was
// produced for the current material, so the commit cannot be rejected.
func (s *Stack) update(fn func(m *Meta)) *Stack {
	meta := s.Meta()
	fn(meta)
	_, _ = s.SetMeta(meta)
	return s
}

func (s *Stack) factory() *Factory {
	return s.platform.factory()
}

// HasDisplayName reports whether a display name is set.
func (s *Stack) HasDisplayName() bool { return s.Meta().HasDisplayName() }

// DisplayName returns the display name. Check HasDisplayName first.
func (s *Stack) DisplayName() string { return s.Meta().DisplayName() }

// SetDisplayName sets the display name; "" removes it.
func (s *Stack) SetDisplayName(name string) *Stack {
	return s.update(func(m *Meta) { m.SetDisplayName(name) })
}

// HasLore reports whether lore is set.
func (s *Stack) HasLore() bool { return s.Meta().HasLore() }

// Lore returns a copy of the lore lines.
func (s *Stack) Lore() []string { return s.Meta().Lore() }

// SetLore replaces the lore; nil removes it.
func (s *Stack) SetLore(lore []string) *Stack {
	return s.update(func(m *Meta) { m.SetLore(lore) })
}

// SetLoreLines replaces the lore with lines.
func (s *Stack) SetLoreLines(lines ...string) *Stack {
	return s.SetLore(slices.Clone(lines))
}

// ContainsEnchantment reports whether e is present.
func (s *Stack) ContainsEnchantment(e types.Enchantment) bool {
	return s.Meta().HasEnchant(e)
}

// EnchantmentLevel returns the level of e, or 0.
func (s *Stack) EnchantmentLevel(e types.Enchantment) int {
	return s.Meta().EnchantLevel(e)
}

// Enchantments returns a copy of all enchantments and their levels.
func (s *Stack) Enchantments() map[types.Enchantment]int {
	return s.Meta().Enchants()
}

// AddEnchantment sets e to level after validating it. The enchantment
// must be known to the registry, applicable to the material and level must
// lie in its allowed range; otherwise the returned error wraps
// ErrInvalidArgument together with the specific cause. An existing level
// for e is replaced.
func (s *Stack) AddEnchantment(e types.Enchantment, level int) error {
	if err := s.validateEnchantment(e, level); err != nil {
		return err
	}
	s.AddUnsafeEnchantment(e, level)
	return nil
}

// AddEnchantments applies each entry through AddEnchantment in name
// order and stops at the first failure. Entries before the failing one stay
// applied; callers that need all-or-nothing should work on a Clone.
func (s *Stack) AddEnchantments(enchants map[types.Enchantment]int) error {
	for _, e := range sortedKeys(enchants) {
		if err := s.AddEnchantment(e, enchants[e]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stack) validateEnchantment(e types.Enchantment, level int) error {
	var reg types.EnchantmentRegistry
	if s.platform != nil {
		reg = s.platform.Enchantments
	}
	if e == "" || reg == nil {
		return fmt.Errorf("%w: %w: %q", types.ErrInvalidArgument, types.ErrUnknownEnchantment, e)
	}
	if resolved, ok := reg.Lookup(string(e)); !ok || resolved != e {
		return fmt.Errorf("%w: %w: %q", types.ErrInvalidArgument, types.ErrUnknownEnchantment, e)
	}
	if !reg.CanEnchant(e, s.typ) {
		return fmt.Errorf("%w: %w: %s on %s", types.ErrInvalidArgument, types.ErrNotApplicable, e, s.typ)
	}
	if !reg.ValidLevel(e, level) {
		return fmt.Errorf("%w: %w: %s level %d", types.ErrInvalidArgument, types.ErrInvalidLevel, e, level)
	}
	return nil
}

// AddUnsafeEnchantment sets e to level without any validation.
func (s *Stack) AddUnsafeEnchantment(e types.Enchantment, level int) *Stack {
	return s.update(func(m *Meta) { m.AddEnchant(e, level, true) })
}

// AddUnsafeEnchantments sets every entry without validation.
func (s *Stack) AddUnsafeEnchantments(enchants map[types.Enchantment]int) *Stack {
	for _, e := range sortedKeys(enchants) {
		s.AddUnsafeEnchantment(e, enchants[e])
	}
	return s
}

// RemoveEnchantment removes e and returns its previous level, or 0.
func (s *Stack) RemoveEnchantment(e types.Enchantment) int {
	meta := s.Meta()
	if !meta.HasEnchant(e) {
		return 0
	}
	level := meta.EnchantLevel(e)
	s.update(func(m *Meta) { m.RemoveEnchant(e) })
	return level
}

// HasConflictingEnchant reports whether e conflicts with an enchantment
// already on the stack.
func (s *Stack) HasConflictingEnchant(e types.Enchantment) bool {
	return s.Meta().HasConflictingEnchant(e)
}

// AddItemFlags adds flags; flags already present are ignored.
func (s *Stack) AddItemFlags(flags ...types.ItemFlag) *Stack {
	return s.update(func(m *Meta) { m.AddItemFlags(flags...) })
}

// RemoveItemFlags removes flags; absent flags are ignored.
func (s *Stack) RemoveItemFlags(flags ...types.ItemFlag) *Stack {
	return s.update(func(m *Meta) { m.RemoveItemFlags(flags...) })
}

// ItemFlags returns a sorted copy of the flag set.
func (s *Stack) ItemFlags() []types.ItemFlag { return s.Meta().ItemFlags() }

// HasItemFlag reports whether flag is set.
func (s *Stack) HasItemFlag(flag types.ItemFlag) bool { return s.Meta().HasItemFlag(flag) }

// IsUnbreakable reports whether the unbreakable tag is set.
func (s *Stack) IsUnbreakable() bool { return s.Meta().Extension().IsUnbreakable() }

// SetUnbreakable sets the unbreakable tag.
func (s *Stack) SetUnbreakable(unbreakable bool) *Stack {
	return s.update(func(m *Meta) { m.Extension().SetUnbreakable(unbreakable) })
}

func sortedKeys(m map[types.Enchantment]int) []types.Enchantment {
	keys := make([]types.Enchantment, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
