package item

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// hashSalt is folded into every stack hash after the structural part.
const hashSalt = 1

// Equal reports whether other has the same amount and is similar to s.
func (s *Stack) Equal(other *Stack) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.amount == other.amount && s.IsSimilar(other)
}

// IsSimilar reports whether other matches s in material, durability and
// metadata content. The amount is ignored. A stack that never had metadata
// is similar to one whose metadata was set and then emptied.
func (s *Stack) IsSimilar(other *Stack) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if s.typ != other.typ || s.durability != other.durability {
		return false
	}
	if s.HasMeta() != other.HasMeta() {
		return false
	}
	if !s.HasMeta() {
		return true
	}
	return s.meta.Equal(other.meta)
}

// Hash returns a hash consistent with IsSimilar: similar stacks hash
// equally. The amount is not part of the hash, so equal hashes do not
// imply Equal.
func (s *Stack) Hash() uint64 {
	return s.structuralHash()*31 + hashSalt
}

func (s *Stack) structuralHash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(s.typ))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(s.durability))
	if s.meta != nil {
		_, _ = d.WriteString("\x00meta\x00")
		s.meta.writeHash(d)
	}
	return d.Sum64()
}
