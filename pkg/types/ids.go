package types

import (
	"fmt"
	"strings"
)

// Material names an entry in the external material catalog.
type Material string

// MaterialNone is the unset material. Lenient decoding of an unknown type
// name produces it.
const MaterialNone Material = ""

// IsNone reports whether m is the unset material.
func (m Material) IsNone() bool { return m == MaterialNone }

func (m Material) String() string { return string(m) }

// Enchantment names an entry in the external enchantment registry.
type Enchantment string

func (e Enchantment) String() string { return string(e) }

// ItemFlag hides a part of an item's tooltip when rendered.
type ItemFlag string

// Item flags.
const (
	FlagHideEnchants      ItemFlag = "HIDE_ENCHANTS"
	FlagHideAttributes    ItemFlag = "HIDE_ATTRIBUTES"
	FlagHideUnbreakable   ItemFlag = "HIDE_UNBREAKABLE"
	FlagHideDestroys      ItemFlag = "HIDE_DESTROYS"
	FlagHidePlacedOn      ItemFlag = "HIDE_PLACED_ON"
	FlagHidePotionEffects ItemFlag = "HIDE_POTION_EFFECTS"
)

// ItemFlags lists every recognized item flag in declaration order.
var ItemFlags = []ItemFlag{
	FlagHideEnchants,
	FlagHideAttributes,
	FlagHideUnbreakable,
	FlagHideDestroys,
	FlagHidePlacedOn,
	FlagHidePotionEffects,
}

func (f ItemFlag) String() string { return string(f) }

// ParseItemFlag resolves a flag by name, ignoring case.
// Returns ErrUnknownItemFlag if the name is not a recognized flag.
func ParseItemFlag(name string) (ItemFlag, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, f := range ItemFlags {
		if string(f) == upper {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownItemFlag, name)
}

// MetaKind is the shape of a metadata block. Materials declare which kind
// they carry; a block of another specific kind is not applicable to them.
type MetaKind string

// Metadata kinds.
const (
	MetaUnspecific   MetaKind = "UNSPECIFIC"
	MetaBlockState   MetaKind = "BLOCK_STATE"
	MetaLeatherArmor MetaKind = "LEATHER_ARMOR"
	MetaSkull        MetaKind = "SKULL"
)

// validMetaKinds is the set of recognized metadata kinds.
var validMetaKinds = map[MetaKind]bool{
	MetaUnspecific:   true,
	MetaBlockState:   true,
	MetaLeatherArmor: true,
	MetaSkull:        true,
}

// IsValidMetaKind reports whether k is a recognized metadata kind.
func IsValidMetaKind(k MetaKind) bool {
	return validMetaKinds[k]
}
