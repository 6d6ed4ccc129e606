package item

import "github.com/mesh-intelligence/satchel/pkg/types"

// Platform bundles the collaborators a stack consults: the material
// catalog, the enchantment registry and the metadata factory built over
// them. A Platform is read-only after construction and may be shared.
type Platform struct {
	Materials    types.MaterialCatalog
	Enchantments types.EnchantmentRegistry
	Factory      *Factory
}

// barePlatform stands in for a nil platform. It has no catalogs, so no
// material is known and every metadata block is unspecific.
var barePlatform = NewPlatform(nil, nil)

func platformOrBare(p *Platform) *Platform {
	if p == nil {
		return barePlatform
	}
	return p
}

// factory returns p's metadata factory, or the bare one when p was not
// built by NewPlatform.
func (p *Platform) factory() *Factory {
	if p == nil || p.Factory == nil {
		return barePlatform.Factory
	}
	return p.Factory
}

// NewPlatform wires a Platform and its metadata factory.
func NewPlatform(materials types.MaterialCatalog, enchantments types.EnchantmentRegistry) *Platform {
	return &Platform{
		Materials:    materials,
		Enchantments: enchantments,
		Factory:      NewFactory(materials, enchantments),
	}
}
