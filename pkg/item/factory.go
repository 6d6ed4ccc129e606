package item

import (
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Meta record keys. The names match the long-standing on-disk format.
const (
	metaKeyType        = "meta-type"
	metaKeyDisplayName = "display-name"
	metaKeyLore        = "lore"
	metaKeyEnchants    = "enchants"
	metaKeyItemFlags   = "ItemFlags"
	metaKeyUnbreakable = "Unbreakable"
)

// Factory creates metadata blocks and judges whether a block applies to a
// material. Every Meta remembers the Factory that produced it; stacks only
// accept metadata from their own platform's factory.
type Factory struct {
	materials    types.MaterialCatalog
	enchantments types.EnchantmentRegistry
}

// NewFactory returns a factory over the given catalogs.
func NewFactory(materials types.MaterialCatalog, enchantments types.EnchantmentRegistry) *Factory {
	return &Factory{materials: materials, enchantments: enchantments}
}

// NewMeta returns an empty metadata block of the kind m carries.
func (f *Factory) NewMeta(m types.Material) *Meta {
	return f.newMeta(f.kindOf(m))
}

func (f *Factory) newMeta(kind types.MetaKind) *Meta {
	return &Meta{factory: f, kind: kind}
}

func (f *Factory) kindOf(m types.Material) types.MetaKind {
	if m.IsNone() || f.materials == nil {
		return types.MetaUnspecific
	}
	kind := f.materials.MetaKind(m)
	if !types.IsValidMetaKind(kind) {
		return types.MetaUnspecific
	}
	return kind
}

// Owns reports whether meta was produced by f.
func (f *Factory) Owns(meta *Meta) bool {
	return meta != nil && meta.factory == f
}

// IsApplicable reports whether meta can be attached to items of material
// m. Unspecific metadata applies everywhere; a specific kind applies only to
// materials of that kind. A nil meta is always applicable.
func (f *Factory) IsApplicable(meta *Meta, m types.Material) bool {
	if meta == nil {
		return true
	}
	return meta.kind == types.MetaUnspecific || meta.kind == f.kindOf(m)
}

// AsMetaFor returns a copy of meta converted to the kind of m, or nil if
// meta is not applicable to m.
func (f *Factory) AsMetaFor(meta *Meta, m types.Material) *Meta {
	if meta == nil || !f.IsApplicable(meta, m) {
		return nil
	}
	out := meta.Clone()
	out.factory = f
	out.kind = f.kindOf(m)
	return out
}

// IsEmpty reports whether meta is structurally equal to the canonical
// empty block. A nil meta is empty.
func (f *Factory) IsEmpty(meta *Meta) bool {
	return meta == nil || meta.isEmpty()
}

// Equal compares two metadata blocks by content, treating nil as empty.
func (f *Factory) Equal(a, b *Meta) bool {
	if f.IsEmpty(a) || f.IsEmpty(b) {
		return f.IsEmpty(a) && f.IsEmpty(b)
	}
	return a.Equal(b)
}

// DecodeMeta interprets a persisted metadata blob. It accepts a Meta
// produced by f, or a mapping (Record or map[string]any) whose meta-type
// names a known kind. The boolean is false when v is not a metadata blob.
// Unknown enchantment or flag names inside a valid blob are dropped.
func (f *Factory) DecodeMeta(v any) (*Meta, bool) {
	if meta, ok := v.(*Meta); ok {
		if !f.Owns(meta) {
			return nil, false
		}
		return meta.Clone(), true
	}
	rec, ok := types.MapValue(v)
	if !ok {
		return nil, false
	}
	rawKind, ok := rec.Get(metaKeyType)
	if !ok {
		return nil, false
	}
	kindName, ok := rawKind.(string)
	if !ok || !types.IsValidMetaKind(types.MetaKind(kindName)) {
		return nil, false
	}
	meta := f.newMeta(types.MetaKind(kindName))

	if raw, ok := rec.Get(metaKeyDisplayName); ok {
		name, ok := raw.(string)
		if !ok {
			return nil, false
		}
		meta.SetDisplayName(name)
	}
	if raw, ok := rec.Get(metaKeyLore); ok {
		lore, ok := stringList(raw)
		if !ok {
			return nil, false
		}
		meta.SetLore(lore)
	}
	if raw, ok := rec.Get(metaKeyEnchants); ok {
		enchants, ok := types.MapValue(raw)
		if !ok {
			return nil, false
		}
		for _, fld := range enchants.Fields() {
			ench, found := f.lookupEnchantment(fld.Key)
			level, isInt := types.IntValue(fld.Value)
			if !found || !isInt {
				continue
			}
			meta.AddEnchant(ench, level, true)
		}
	}
	if raw, ok := rec.Get(metaKeyItemFlags); ok {
		names, ok := stringList(raw)
		if !ok {
			return nil, false
		}
		for _, name := range names {
			if flag, err := types.ParseItemFlag(name); err == nil {
				meta.AddItemFlags(flag)
			}
		}
	}
	if raw, ok := rec.Get(metaKeyUnbreakable); ok {
		b, ok := raw.(bool)
		if !ok {
			return nil, false
		}
		meta.Extension().SetUnbreakable(b)
	}
	return meta, true
}

func (f *Factory) lookupEnchantment(name string) (types.Enchantment, bool) {
	if f.enchantments == nil {
		return "", false
	}
	return f.enchantments.Lookup(name)
}

// stringList accepts []string or a []any holding only strings.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
