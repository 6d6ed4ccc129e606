package types

// MaterialCatalog resolves and describes materials. Implementations are
// provided by the hosting platform; satchel only reads from them.
type MaterialCatalog interface {
	// Lookup resolves a symbolic material name. The boolean is false when
	// the catalog has no such material.
	Lookup(name string) (Material, bool)

	// ByLegacyID resolves a raw numeric type identifier.
	ByLegacyID(id int) (Material, bool)

	// LegacyID returns the raw numeric identifier of m, or -1.
	LegacyID(m Material) int

	// MaxStackSize returns the largest stack m can form, or -1 when the
	// catalog has no known bound.
	MaxStackSize(m Material) int

	// MetaKind returns the metadata kind items of m carry.
	MetaKind(m Material) MetaKind

	// DefaultData returns the default legacy data byte for m. The boolean
	// is false for materials that carry no legacy data.
	DefaultData(m Material) (byte, bool)
}

// EnchantmentRegistry resolves enchantments and answers validity and
// conflict questions about them.
type EnchantmentRegistry interface {
	// Lookup resolves an enchantment by name.
	Lookup(name string) (Enchantment, bool)

	// CanEnchant reports whether e may be applied to items of material m.
	CanEnchant(e Enchantment, m Material) bool

	// ValidLevel reports whether level lies within e's allowed range.
	ValidLevel(e Enchantment, level int) bool

	// ConflictsWith reports whether a and b cannot coexist on one item.
	ConflictsWith(a, b Enchantment) bool
}
