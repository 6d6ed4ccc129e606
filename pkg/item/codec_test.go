package item_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func record(kv ...any) types.Record {
	var r types.Record
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func TestSerialize_OmitsDefaults(t *testing.T) {
	rec := item.New(platform, stone).Serialize()
	assert.Equal(t, []string{"type"}, rec.Keys())

	rec = item.NewWithDamage(platform, diamondSword, 2, 9).SetDisplayName("Edge").Serialize()
	assert.Equal(t, []string{"type", "damage", "amount", "meta"}, rec.Keys())

	meta, ok := rec.Get("meta")
	require.True(t, ok)
	m, ok := types.MapValue(meta)
	require.True(t, ok)
	assert.Equal(t, []string{"meta-type", "display-name"}, m.Keys())
}

func TestSerialize_NeverWritesLegacyEnchantments(t *testing.T) {
	rec := item.New(platform, diamondSword).AddUnsafeEnchantment(sharpness, 12).Serialize()
	assert.False(t, rec.Has(item.KeyEnchantments))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"DIAMOND_SWORD","meta":{"meta-type":"UNSPECIFIC","enchants":{"SHARPNESS":12}}}`, string(out))
}

func TestRoundTrip(t *testing.T) {
	codec := item.NewCodec(platform)
	stacks := []*item.Stack{
		item.New(platform, stone),
		item.NewWithDamage(platform, diamondSword, 1, 300),
		item.NewWithAmount(platform, dirt, 0),
		item.New(platform, diamondSword).
			SetDisplayName("Edge").
			SetLoreLines("one", "two").
			AddUnsafeEnchantments(map[types.Enchantment]int{sharpness: 5, unbreaking: 3}).
			AddItemFlags(types.FlagHideEnchants).
			SetUnbreakable(true),
		item.New(platform, leatherHelmet).SetDisplayName("Cap"),
	}
	for _, s := range stacks {
		t.Run(s.String(), func(t *testing.T) {
			got, err := codec.Deserialize(codec.Serialize(s))
			require.NoError(t, err)
			assert.True(t, s.Equal(got), "want %s, got %s", s, got)
		})
	}
}

func TestRoundTrip_ThroughYAMLAndJSON(t *testing.T) {
	codec := item.NewCodec(platform)
	s := item.NewWithAmount(platform, leatherHelmet, 1).
		SetDisplayName("Cap").
		AddUnsafeEnchantment("PROTECTION", 4).
		SetLoreLines("worn")

	data, err := yaml.Marshal(codec.Serialize(s))
	require.NoError(t, err)
	var fromYAML types.Record
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	got, err := codec.Deserialize(fromYAML)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))

	data, err = json.Marshal(codec.Serialize(s))
	require.NoError(t, err)
	var fromJSON types.Record
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	got, err = codec.Deserialize(fromJSON)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))
}

func TestDeserialize_Defaults(t *testing.T) {
	s, err := item.NewCodec(platform).Deserialize(record("type", "STONE"))
	require.NoError(t, err)
	assert.True(t, s.Equal(item.New(platform, stone)))
}

func TestDeserialize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rec     types.Record
		field   string
		wantErr error
	}{
		{"missing type", record("amount", 3), item.KeyType, types.ErrMissingType},
		{"numeric type", record("type", 1), item.KeyType, types.ErrInvalidField},
		{"string amount", record("type", "STONE", "amount", "three"), item.KeyAmount, types.ErrInvalidField},
		{"fractional damage", record("type", "STONE", "damage", 1.5), item.KeyDamage, types.ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := item.NewCodec(platform).Deserialize(tt.rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var de *item.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDeserialize_NumberForms(t *testing.T) {
	codec := item.NewCodec(platform)
	for _, amount := range []any{int(4), int32(4), int64(4), float64(4), json.Number("4")} {
		s, err := codec.Deserialize(record("type", "STONE", "amount", amount))
		require.NoError(t, err, "%T", amount)
		assert.Equal(t, 4, s.Amount())
	}

	for _, huge := range []any{uint64(math.MaxUint64), 1e300, json.Number("99999999999999999999")} {
		_, err := codec.Deserialize(record("type", "STONE", "damage", huge))
		var de *item.DecodeError
		require.ErrorAs(t, err, &de, "%T", huge)
		assert.Equal(t, item.KeyDamage, de.Field)
		assert.ErrorIs(t, err, types.ErrInvalidField)
	}
}

func TestDeserialize_UnknownType(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lenient := item.NewCodec(platform, item.WithLogger(zap.New(core)))

	s, err := lenient.Deserialize(record("type", "PURPLE_THING", "amount", 2))
	require.NoError(t, err)
	assert.True(t, s.Type().IsNone())
	assert.Equal(t, 2, s.Amount())
	assert.Equal(t, 1, logs.FilterMessage("unknown material, decoding with unset type").Len())

	strict := item.NewCodec(platform, item.WithStrict(true))
	_, err = strict.Deserialize(record("type", "PURPLE_THING"))
	assert.ErrorIs(t, err, types.ErrUnknownMaterial)
}

func TestDeserialize_LegacyEnchantments(t *testing.T) {
	rec := record(
		"type", "DIAMOND_SWORD",
		"enchantments", record(
			"DAMAGE_ALL", 12,
			"durability", int64(2),
			"VORPAL", 1,
			"SMITE", "three",
			"LOOTING", 2.0,
		),
	)
	s, err := item.NewCodec(platform).Deserialize(rec)
	require.NoError(t, err)
	assert.Equal(t, map[types.Enchantment]int{
		sharpness:  12,
		unbreaking: 2,
		"LOOTING":  2,
	}, s.Enchantments(), "unknown names and non-integer levels are skipped")

	// Levels above today's caps survive, and the legacy field is not re-emitted.
	out := s.Serialize()
	assert.False(t, out.Has(item.KeyEnchantments))
}

func TestDeserialize_LegacyEnchantmentsFromPlainMap(t *testing.T) {
	rec := record("type", "DIAMOND_SWORD", "enchantments", map[string]any{"SHARPNESS": 3})
	s, err := item.NewCodec(platform).Deserialize(rec)
	require.NoError(t, err)
	assert.Equal(t, 3, s.EnchantmentLevel(sharpness))
}

func TestDeserialize_LegacyWinsOverMeta(t *testing.T) {
	rec := record(
		"type", "DIAMOND_SWORD",
		"enchantments", record("SHARPNESS", 1),
		"meta", record("meta-type", "UNSPECIFIC", "display-name", "Ignored"),
	)
	s, err := item.NewCodec(platform).Deserialize(rec)
	require.NoError(t, err)
	assert.Equal(t, 1, s.EnchantmentLevel(sharpness))
	assert.False(t, s.HasDisplayName())
}

func TestDeserialize_MetaBlobs(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		meta     any
		wantName string
	}{
		{"record", "DIAMOND_SWORD", record("meta-type", "UNSPECIFIC", "display-name", "Edge"), "Edge"},
		{"plain map", "DIAMOND_SWORD", map[string]any{"meta-type": "UNSPECIFIC", "display-name": "Edge"}, "Edge"},
		{"matching kind", "LEATHER_HELMET", record("meta-type", "LEATHER_ARMOR", "display-name", "Cap"), "Cap"},
		{"inapplicable kind", "STONE", record("meta-type", "LEATHER_ARMOR", "display-name", "Cap"), ""},
		{"unknown kind", "STONE", record("meta-type", "POTION", "display-name", "Cap"), ""},
		{"no kind", "STONE", record("display-name", "Cap"), ""},
		{"not a mapping", "STONE", "garbage", ""},
		{"wrong field type", "STONE", record("meta-type", "UNSPECIFIC", "display-name", 7), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := item.NewCodec(platform).Deserialize(record("type", tt.typ, "meta", tt.meta))
			require.NoError(t, err, "bad metadata is ignored, not fatal")
			assert.Equal(t, tt.wantName, s.DisplayName())
			assert.Equal(t, tt.wantName != "", s.HasMeta())
		})
	}
}

func TestDeserialize_MetaObject(t *testing.T) {
	codec := item.NewCodec(platform)
	meta := item.New(platform, stone).SetDisplayName("Rock").Meta()

	s, err := codec.Deserialize(record("type", "STONE", "meta", meta))
	require.NoError(t, err)
	assert.Equal(t, "Rock", s.DisplayName())

	meta.SetDisplayName("Changed")
	assert.Equal(t, "Rock", s.DisplayName(), "the decoded stack does not alias the input")
}

func TestDeserialize_MetaSkipsUnknownEntries(t *testing.T) {
	rec := record("type", "DIAMOND_SWORD", "meta", record(
		"meta-type", "UNSPECIFIC",
		"enchants", record("SHARPNESS", 2, "VORPAL", 1),
		"ItemFlags", []any{"HIDE_ENCHANTS", "HIDE_NOTHING"},
		"Unbreakable", true,
	))
	s, err := item.NewCodec(platform).Deserialize(rec)
	require.NoError(t, err)
	assert.Equal(t, map[types.Enchantment]int{sharpness: 2}, s.Enchantments())
	assert.Equal(t, []types.ItemFlag{types.FlagHideEnchants}, s.ItemFlags())
	assert.True(t, s.IsUnbreakable())
}
