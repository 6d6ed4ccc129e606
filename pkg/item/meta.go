package item

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Meta is a metadata block: display name, lore, enchantments, item flags
// and the nested extension holding the unbreakable tag.
//
// A Meta obtained from a Stack is a detached copy. Changes made to it are
// only visible on the stack after Stack.SetMeta commits them.
type Meta struct {
	factory     *Factory
	kind        types.MetaKind
	displayName string
	lore        []string
	enchants    map[types.Enchantment]int
	flags       map[types.ItemFlag]struct{}
	ext         MetaExtension
}

// MetaExtension carries tags that live in a nested structure of the
// metadata block rather than at its top level.
type MetaExtension struct {
	unbreakable bool
}

// IsUnbreakable reports whether the unbreakable tag is set.
func (x *MetaExtension) IsUnbreakable() bool { return x.unbreakable }

// SetUnbreakable sets the unbreakable tag.
func (x *MetaExtension) SetUnbreakable(unbreakable bool) { x.unbreakable = unbreakable }

// Kind returns the metadata kind.
func (m *Meta) Kind() types.MetaKind { return m.kind }

// Extension returns the nested extension block. It belongs to m, so
// changes through it follow the same commit rule as m itself.
func (m *Meta) Extension() *MetaExtension { return &m.ext }

// HasDisplayName reports whether a non-empty display name is set.
func (m *Meta) HasDisplayName() bool { return m.displayName != "" }

// DisplayName returns the display name, or "" when none is set.
func (m *Meta) DisplayName() string { return m.displayName }

// SetDisplayName sets the display name. An empty name removes it.
func (m *Meta) SetDisplayName(name string) { m.displayName = name }

// HasLore reports whether at least one lore line is set.
func (m *Meta) HasLore() bool { return len(m.lore) > 0 }

// Lore returns a copy of the lore lines, or nil.
func (m *Meta) Lore() []string {
	if len(m.lore) == 0 {
		return nil
	}
	return slices.Clone(m.lore)
}

// SetLore replaces the lore. A nil or empty slice removes it.
func (m *Meta) SetLore(lore []string) {
	if len(lore) == 0 {
		m.lore = nil
		return
	}
	m.lore = slices.Clone(lore)
}

// HasEnchants reports whether any enchantment is present.
func (m *Meta) HasEnchants() bool { return len(m.enchants) > 0 }

// HasEnchant reports whether e is present.
func (m *Meta) HasEnchant(e types.Enchantment) bool {
	_, ok := m.enchants[e]
	return ok
}

// EnchantLevel returns the level of e, or 0 when absent.
func (m *Meta) EnchantLevel(e types.Enchantment) int {
	return m.enchants[e]
}

// Enchants returns a copy of the enchantment map. It is never nil.
func (m *Meta) Enchants() map[types.Enchantment]int {
	out := make(map[types.Enchantment]int, len(m.enchants))
	for e, level := range m.enchants {
		out[e] = level
	}
	return out
}

// AddEnchant sets e to level, replacing any previous level. Unless
// ignoreLevelRestriction is set the level must be valid for e according to
// the factory's registry. Returns true if the block changed.
func (m *Meta) AddEnchant(e types.Enchantment, level int, ignoreLevelRestriction bool) bool {
	if !ignoreLevelRestriction {
		if m.factory == nil || m.factory.enchantments == nil ||
			!m.factory.enchantments.ValidLevel(e, level) {
			return false
		}
	}
	if m.enchants == nil {
		m.enchants = make(map[types.Enchantment]int)
	}
	prev, had := m.enchants[e]
	m.enchants[e] = level
	return !had || prev != level
}

// RemoveEnchant removes e. Returns true if it was present.
func (m *Meta) RemoveEnchant(e types.Enchantment) bool {
	if _, ok := m.enchants[e]; !ok {
		return false
	}
	delete(m.enchants, e)
	return true
}

// HasConflictingEnchant reports whether e conflicts with any enchantment
// already present, other than e itself.
func (m *Meta) HasConflictingEnchant(e types.Enchantment) bool {
	if m.factory == nil || m.factory.enchantments == nil {
		return false
	}
	for present := range m.enchants {
		if present == e {
			continue
		}
		if m.factory.enchantments.ConflictsWith(present, e) {
			return true
		}
	}
	return false
}

// AddItemFlags adds flags. Flags already present are ignored.
func (m *Meta) AddItemFlags(flags ...types.ItemFlag) {
	for _, f := range flags {
		if m.flags == nil {
			m.flags = make(map[types.ItemFlag]struct{})
		}
		m.flags[f] = struct{}{}
	}
}

// RemoveItemFlags removes flags. Absent flags are ignored.
func (m *Meta) RemoveItemFlags(flags ...types.ItemFlag) {
	for _, f := range flags {
		delete(m.flags, f)
	}
}

// HasItemFlag reports whether flag is present.
func (m *Meta) HasItemFlag(flag types.ItemFlag) bool {
	_, ok := m.flags[flag]
	return ok
}

// ItemFlags returns the flags in sorted order. The slice is a copy.
func (m *Meta) ItemFlags() []types.ItemFlag {
	out := make([]types.ItemFlag, 0, len(m.flags))
	for f := range m.flags {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Clone returns a deep copy of m produced by the same factory.
func (m *Meta) Clone() *Meta {
	out := &Meta{
		factory:     m.factory,
		kind:        m.kind,
		displayName: m.displayName,
		ext:         m.ext,
	}
	out.SetLore(m.lore)
	if len(m.enchants) > 0 {
		out.enchants = m.Enchants()
	}
	if len(m.flags) > 0 {
		out.flags = make(map[types.ItemFlag]struct{}, len(m.flags))
		for f := range m.flags {
			out.flags[f] = struct{}{}
		}
	}
	return out
}

func (m *Meta) isEmpty() bool {
	return m.displayName == "" &&
		len(m.lore) == 0 &&
		len(m.enchants) == 0 &&
		len(m.flags) == 0 &&
		!m.ext.unbreakable
}

// Equal compares content: name, lore, enchantments, flags and the
// unbreakable tag. The kind and the producing factory are not compared.
func (m *Meta) Equal(other *Meta) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.displayName != other.displayName ||
		!slices.Equal(m.lore, other.lore) ||
		m.ext != other.ext ||
		len(m.enchants) != len(other.enchants) ||
		len(m.flags) != len(other.flags) {
		return false
	}
	for e, level := range m.enchants {
		if got, ok := other.enchants[e]; !ok || got != level {
			return false
		}
	}
	for f := range m.flags {
		if _, ok := other.flags[f]; !ok {
			return false
		}
	}
	return true
}

// sortedEnchants returns enchantment names in sorted order.
func (m *Meta) sortedEnchants() []types.Enchantment {
	out := make([]types.Enchantment, 0, len(m.enchants))
	for e := range m.enchants {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// writeHash feeds a canonical encoding of the content into d. Equal
// blocks always produce the same bytes.
func (m *Meta) writeHash(d *xxhash.Digest) {
	_, _ = d.WriteString("name\x00")
	_, _ = d.WriteString(m.displayName)
	_, _ = d.WriteString("\x00lore\x00")
	for _, line := range m.lore {
		_, _ = d.WriteString(line)
		_, _ = d.WriteString("\x01")
	}
	_, _ = d.WriteString("\x00enchants\x00")
	for _, e := range m.sortedEnchants() {
		_, _ = d.WriteString(fmt.Sprintf("%s=%d\x01", e, m.enchants[e]))
	}
	_, _ = d.WriteString("\x00flags\x00")
	for _, f := range m.ItemFlags() {
		_, _ = d.WriteString(string(f))
		_, _ = d.WriteString("\x01")
	}
	if m.ext.unbreakable {
		_, _ = d.WriteString("\x00unbreakable")
	}
}

// Serialize returns the persisted form of m. Only non-default fields are
// written; enchantments and flags are sorted so output is stable.
func (m *Meta) Serialize() types.Record {
	var rec types.Record
	rec.Set(metaKeyType, string(m.kind))
	if m.HasDisplayName() {
		rec.Set(metaKeyDisplayName, m.displayName)
	}
	if m.HasLore() {
		rec.Set(metaKeyLore, m.Lore())
	}
	if m.HasEnchants() {
		var enchants types.Record
		for _, e := range m.sortedEnchants() {
			enchants.Set(string(e), m.enchants[e])
		}
		rec.Set(metaKeyEnchants, enchants)
	}
	if len(m.flags) > 0 {
		flags := m.ItemFlags()
		names := make([]string, len(flags))
		for i, f := range flags {
			names[i] = string(f)
		}
		rec.Set(metaKeyItemFlags, names)
	}
	if m.ext.unbreakable {
		rec.Set(metaKeyUnbreakable, true)
	}
	return rec
}

func (m *Meta) String() string {
	var parts []string
	if m.HasDisplayName() {
		parts = append(parts, fmt.Sprintf("display-name=%q", m.displayName))
	}
	if m.HasLore() {
		parts = append(parts, fmt.Sprintf("lore=%q", m.lore))
	}
	if m.HasEnchants() {
		enchants := make([]string, 0, len(m.enchants))
		for _, e := range m.sortedEnchants() {
			enchants = append(enchants, fmt.Sprintf("%s=%d", e, m.enchants[e]))
		}
		parts = append(parts, "enchants={"+strings.Join(enchants, ", ")+"}")
	}
	if len(m.flags) > 0 {
		parts = append(parts, fmt.Sprintf("flags=%v", m.ItemFlags()))
	}
	if m.ext.unbreakable {
		parts = append(parts, "unbreakable")
	}
	return fmt.Sprintf("%s_META:{%s}", m.kind, strings.Join(parts, ", "))
}
