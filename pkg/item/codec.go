package item

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Record keys.
const (
	KeyType         = "type"
	KeyDamage       = "damage"
	KeyAmount       = "amount"
	KeyMeta         = "meta"
	KeyEnchantments = "enchantments" // read-only, written by older generations
)

// DecodeError reports a record that cannot be turned into a stack.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Codec converts stacks to and from records.
type Codec struct {
	platform *Platform
	strict   bool
	logger   *zap.Logger
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithStrict makes Deserialize fail with ErrUnknownMaterial when the type
// name does not resolve. By default such records decode to a stack of
// MaterialNone so that stored records from other catalogs stay loadable.
func WithStrict(strict bool) CodecOption {
	return func(c *Codec) { c.strict = strict }
}

// WithLogger sets the logger used to report skipped input.
func WithLogger(logger *zap.Logger) CodecOption {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCodec returns a codec bound to p.
func NewCodec(p *Platform, opts ...CodecOption) *Codec {
	c := &Codec{platform: platformOrBare(p), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Serialize is Codec.Serialize with the stack's own platform.
func (s *Stack) Serialize() types.Record {
	return NewCodec(s.platform).Serialize(s)
}

// Serialize returns the record for s. Only type is always written; damage,
// amount and meta appear when they differ from their defaults. The flat
// enchantments field of older generations is never written.
func (c *Codec) Serialize(s *Stack) types.Record {
	var rec types.Record
	rec.Set(KeyType, string(s.typ))
	if s.durability != 0 {
		rec.Set(KeyDamage, s.durability)
	}
	if s.amount != 1 {
		rec.Set(KeyAmount, s.amount)
	}
	if !c.platform.factory().IsEmpty(s.meta) {
		rec.Set(KeyMeta, s.meta.Serialize())
	}
	return rec
}

// payload is the optional part of a record after type, damage and amount.
type payload interface {
	apply(c *Codec, s *Stack)
}

// legacyPayload is the flat name-to-level enchantment map.
type legacyPayload struct {
	raw any
}

// metaPayload is a metadata blob.
type metaPayload struct {
	raw any
}

type noPayload struct{}

// classify picks the payload variant. Records never carry both fields;
// if one does, the legacy map wins.
func classify(rec types.Record) payload {
	if raw, ok := rec.Get(KeyEnchantments); ok {
		return legacyPayload{raw: raw}
	}
	if raw, ok := rec.Get(KeyMeta); ok {
		return metaPayload{raw: raw}
	}
	return noPayload{}
}

// apply adds every resolvable entry through the unsafe path, so levels
// beyond today's caps survive. Unknown names and non-integer levels are
// skipped.
func (p legacyPayload) apply(c *Codec, s *Stack) {
	enchants, ok := types.MapValue(p.raw)
	if !ok {
		c.logger.Debug("ignoring legacy enchantments that are not a mapping",
			zap.Any("value", p.raw))
		return
	}
	for _, f := range enchants.Fields() {
		ench, found := c.lookupEnchantment(f.Key)
		if !found {
			c.logger.Debug("skipping unknown legacy enchantment", zap.String("name", f.Key))
			continue
		}
		level, isInt := types.IntValue(f.Value)
		if !isInt {
			c.logger.Debug("skipping legacy enchantment with non-integer level",
				zap.String("name", f.Key), zap.Any("level", f.Value))
			continue
		}
		s.AddUnsafeEnchantment(ench, level)
	}
}

func (p metaPayload) apply(c *Codec, s *Stack) {
	meta, ok := c.platform.factory().DecodeMeta(p.raw)
	if !ok {
		c.logger.Debug("ignoring value that is not a metadata blob", zap.Any("value", p.raw))
		return
	}
	if applied, _ := s.SetMeta(meta); !applied {
		c.logger.Debug("ignoring metadata not applicable to type",
			zap.String("type", string(s.typ)), zap.String("meta_type", string(meta.Kind())))
	}
}

func (noPayload) apply(*Codec, *Stack) {}

// Deserialize builds a stack from rec. A missing or non-string type, or a
// non-numeric damage or amount, is a *DecodeError. An unknown type name
// yields a MaterialNone stack unless the codec is strict. Malformed legacy
// enchantment entries and inapplicable metadata are skipped.
func (c *Codec) Deserialize(rec types.Record) (*Stack, error) {
	rawType, ok := rec.Get(KeyType)
	if !ok {
		return nil, &DecodeError{Field: KeyType, Err: types.ErrMissingType}
	}
	name, ok := rawType.(string)
	if !ok {
		return nil, &DecodeError{Field: KeyType, Err: fmt.Errorf("%w: %T", types.ErrInvalidField, rawType)}
	}
	material, found := types.MaterialNone, false
	if c.platform.Materials != nil {
		material, found = c.platform.Materials.Lookup(name)
	}
	if !found {
		if c.strict {
			return nil, &DecodeError{Field: KeyType, Err: fmt.Errorf("%w: %q", types.ErrUnknownMaterial, name)}
		}
		c.logger.Warn("unknown material, decoding with unset type", zap.String("type", name))
		material = types.MaterialNone
	}

	damage, err := intField(rec, KeyDamage, 0)
	if err != nil {
		return nil, err
	}
	amount, err := intField(rec, KeyAmount, 1)
	if err != nil {
		return nil, err
	}

	s := NewWithDamage(c.platform, material, amount, damage)
	classify(rec).apply(c, s)
	return s, nil
}

func (c *Codec) lookupEnchantment(name string) (types.Enchantment, bool) {
	if c.platform.Enchantments == nil {
		return "", false
	}
	return c.platform.Enchantments.Lookup(name)
}

func intField(rec types.Record, key string, def int) (int, error) {
	raw, ok := rec.Get(key)
	if !ok {
		return def, nil
	}
	n, ok := types.IntValue(raw)
	if !ok {
		return 0, &DecodeError{Field: key, Err: fmt.Errorf("%w: %v", types.ErrInvalidField, raw)}
	}
	return n, nil
}
