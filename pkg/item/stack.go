package item

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Stack is a mutable item stack. Setters change the stack in place and
// return it so calls can be chained:
//
//	s := item.New(p, "DIAMOND_SWORD").SetDisplayName("Edge").SetLoreLines("Sharp", "Old")
//
// Stacks hold no locks; concurrent mutation must be serialized by the
// caller.
type Stack struct {
	platform   *Platform
	typ        types.Material
	amount     int
	durability int
	data       *byte
	meta       *Meta
}

// New returns a stack of one item of material m. A nil p stands for a
// platform with empty catalogs.
func New(p *Platform, m types.Material) *Stack {
	return NewWithDamage(p, m, 1, 0)
}

// NewWithAmount returns a stack of amount items of material m.
func NewWithAmount(p *Platform, m types.Material, amount int) *Stack {
	return NewWithDamage(p, m, amount, 0)
}

// NewWithDamage returns a stack with the given amount and durability.
// Materials that carry legacy data start with their default data byte.
func NewWithDamage(p *Platform, m types.Material, amount, damage int) *Stack {
	s := &Stack{
		platform:   platformOrBare(p),
		typ:        m,
		amount:     amount,
		durability: damage,
	}
	s.data = s.defaultData(m)
	return s
}

// NewWithData returns a stack carrying a legacy data byte. The byte is
// kept only when the material supports legacy data; a nil data keeps the
// material's default.
//
// Deprecated: legacy data predates metadata. Use NewWithDamage.
func NewWithData(p *Platform, m types.Material, amount, damage int, data *byte) *Stack {
	s := NewWithDamage(p, m, amount, damage)
	if data != nil && s.data != nil {
		b := *data
		s.data = &b
	}
	return s
}

// Platform returns the platform the stack was built for.
func (s *Stack) Platform() *Platform { return s.platform }

// Type returns the material.
func (s *Stack) Type() types.Material { return s.typ }

// SetType replaces the material. Legacy data is reset to the new
// material's default. Metadata content is kept; its kind follows the new
// material.
func (s *Stack) SetType(m types.Material) *Stack {
	s.typ = m
	s.data = s.defaultData(m)
	if s.meta != nil {
		meta := s.meta.Clone()
		meta.kind = s.factory().kindOf(m)
		s.meta = meta
	}
	return s
}

// defaultData returns a fresh default data byte for m, or nil when m
// carries no legacy data.
func (s *Stack) defaultData(m types.Material) *byte {
	if s.platform == nil || s.platform.Materials == nil {
		return nil
	}
	d, ok := s.platform.Materials.DefaultData(m)
	if !ok {
		return nil
	}
	return &d
}

// Amount returns the stack size.
func (s *Stack) Amount() int { return s.amount }

// SetAmount sets the stack size. No bounds are enforced; see MaxStackSize.
func (s *Stack) SetAmount(amount int) *Stack {
	s.amount = amount
	return s
}

// Durability returns the damage value; 0 means undamaged.
func (s *Stack) Durability() int { return s.durability }

// SetDurability sets the damage value.
func (s *Stack) SetDurability(durability int) *Stack {
	s.durability = durability
	return s
}

// Data returns the legacy data byte.
//
// Deprecated: legacy data predates metadata.
func (s *Stack) Data() (byte, bool) {
	if s.data == nil {
		return 0, false
	}
	return *s.data, true
}

// SetData sets the legacy data byte.
//
// Deprecated: legacy data predates metadata.
func (s *Stack) SetData(data byte) *Stack {
	s.data = &data
	return s
}

// MaxStackSize returns the largest stack the material can form, or -1
// when the catalog has no idea.
func (s *Stack) MaxStackSize() int {
	if s.platform == nil || s.platform.Materials == nil || s.typ.IsNone() {
		return -1
	}
	return s.platform.Materials.MaxStackSize(s.typ)
}

// Clone returns a deep copy sharing no mutable state with s.
func (s *Stack) Clone() *Stack {
	out := &Stack{
		platform:   s.platform,
		typ:        s.typ,
		amount:     s.amount,
		durability: s.durability,
	}
	if s.data != nil {
		d := *s.data
		out.data = &d
	}
	if s.meta != nil {
		out.meta = s.meta.Clone()
	}
	return out
}

func (s *Stack) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ItemStack{%s x %d", s.typ, s.amount)
	if s.durability != 0 {
		fmt.Fprintf(&b, ", damage=%d", s.durability)
	}
	if s.meta != nil {
		fmt.Fprintf(&b, ", %s", s.meta)
	}
	b.WriteByte('}')
	return b.String()
}
