package item

// Constructors and accessors keyed by raw numeric material identifiers.
// They exist only so that callers still holding numeric ids keep working
// and will be removed once those callers move to symbolic materials.

import (
	"fmt"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func resolveLegacyID(p *Platform, id int) (types.Material, error) {
	if p == nil || p.Materials == nil {
		return types.MaterialNone, fmt.Errorf("%w: id %d", types.ErrUnknownMaterial, id)
	}
	m, ok := p.Materials.ByLegacyID(id)
	if !ok {
		return types.MaterialNone, fmt.Errorf("%w: id %d", types.ErrUnknownMaterial, id)
	}
	return m, nil
}

// NewFromID returns a stack of one item of the material with the given
// numeric id.
//
// Deprecated: numeric ids are magic values. Use New.
func NewFromID(p *Platform, id int) (*Stack, error) {
	return NewFromIDWithDamage(p, id, 1, 0)
}

// NewFromIDWithAmount is NewWithAmount keyed by numeric id.
//
// Deprecated: numeric ids are magic values. Use NewWithAmount.
func NewFromIDWithAmount(p *Platform, id, amount int) (*Stack, error) {
	return NewFromIDWithDamage(p, id, amount, 0)
}

// NewFromIDWithDamage is NewWithDamage keyed by numeric id.
//
// Deprecated: numeric ids are magic values. Use NewWithDamage.
func NewFromIDWithDamage(p *Platform, id, amount, damage int) (*Stack, error) {
	m, err := resolveLegacyID(p, id)
	if err != nil {
		return nil, err
	}
	return NewWithDamage(p, m, amount, damage), nil
}

// NewFromIDWithData is NewWithData keyed by numeric id.
//
// Deprecated: numeric ids and legacy data are magic values.
func NewFromIDWithData(p *Platform, id, amount, damage int, data *byte) (*Stack, error) {
	m, err := resolveLegacyID(p, id)
	if err != nil {
		return nil, err
	}
	return NewWithData(p, m, amount, damage, data), nil
}

// TypeID returns the numeric id of the material, or -1.
//
// Deprecated: numeric ids are magic values. Use Type.
func (s *Stack) TypeID() int {
	if s.platform == nil || s.platform.Materials == nil || s.typ.IsNone() {
		return -1
	}
	return s.platform.Materials.LegacyID(s.typ)
}

// SetTypeID replaces the material by numeric id. Legacy data is reset as
// in SetType.
//
// Deprecated: numeric ids are magic values. Use SetType.
func (s *Stack) SetTypeID(id int) error {
	m, err := resolveLegacyID(s.platform, id)
	if err != nil {
		return err
	}
	s.SetType(m)
	return nil
}
