package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
	"github.com/mesh-intelligence/satchel/pkg/vanilla"
)

func TestMeta_ReturnsDetachedCopy(t *testing.T) {
	s := item.New(platform, diamondSword)

	m := s.Meta()
	m.SetDisplayName("Lost")
	assert.False(t, s.HasDisplayName(), "changes to a copy are lost until committed")
	assert.False(t, s.HasMeta())

	applied, err := s.SetMeta(m)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "Lost", s.DisplayName())
}

func TestSetMeta_Nil(t *testing.T) {
	s := item.New(platform, diamondSword).SetDisplayName("Edge")
	applied, err := s.SetMeta(nil)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, s.HasMeta())
}

func TestSetMeta_Foreign(t *testing.T) {
	mats, enchs, err := vanilla.Load()
	require.NoError(t, err)
	other := item.NewFactory(mats, enchs)

	s := item.New(platform, diamondSword)
	for name, meta := range map[string]*item.Meta{
		"other factory": other.NewMeta(diamondSword),
		"zero value":    {},
	} {
		t.Run(name, func(t *testing.T) {
			applied, err := s.SetMeta(meta)
			assert.False(t, applied)
			assert.ErrorIs(t, err, types.ErrForeignMeta)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.False(t, s.HasMeta())
		})
	}
}

func TestSetMeta_Inapplicable(t *testing.T) {
	armor := item.New(platform, leatherHelmet).SetDisplayName("Cap").Meta()
	require.Equal(t, types.MetaLeatherArmor, armor.Kind())

	s := item.New(platform, stone).SetDisplayName("Rock")
	applied, err := s.SetMeta(armor)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "Rock", s.DisplayName(), "rejected metadata leaves the stack unchanged")
}

func TestSetMeta_ConvertsUnspecific(t *testing.T) {
	generic := item.New(platform, stone).SetDisplayName("Cap").Meta()
	require.Equal(t, types.MetaUnspecific, generic.Kind())

	s := item.New(platform, leatherHelmet)
	applied, err := s.SetMeta(generic)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, types.MetaLeatherArmor, s.Meta().Kind())
	assert.Equal(t, types.MetaUnspecific, generic.Kind(), "the argument is not modified")
}

func TestSetMeta_EmptyStoresNothing(t *testing.T) {
	s := item.New(platform, chest)
	applied, err := s.SetMeta(s.Meta())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, s.HasMeta())
}

func TestDisplayNameAndLore(t *testing.T) {
	s := item.New(platform, diamondSword)
	assert.False(t, s.HasDisplayName())
	assert.False(t, s.HasLore())
	assert.Nil(t, s.Lore())

	s.SetDisplayName("Edge").SetLoreLines("one", "two")
	assert.Equal(t, "Edge", s.DisplayName())
	assert.Equal(t, []string{"one", "two"}, s.Lore())

	lore := s.Lore()
	lore[0] = "changed"
	assert.Equal(t, "one", s.Lore()[0], "Lore returns a copy")

	s.SetDisplayName("").SetLore(nil)
	assert.False(t, s.HasMeta(), "clearing every field removes the metadata")
	assert.True(t, s.IsSimilar(item.New(platform, diamondSword)))
}

func TestAddEnchantment(t *testing.T) {
	tests := []struct {
		name    string
		typ     types.Material
		ench    types.Enchantment
		level   int
		wantErr error
	}{
		{"valid", diamondSword, sharpness, 5, nil},
		{"minimum level", diamondSword, sharpness, 1, nil},
		{"level too high", diamondSword, sharpness, 6, types.ErrInvalidLevel},
		{"level zero", diamondSword, sharpness, 0, types.ErrInvalidLevel},
		{"wrong target", diamondSword, efficiency, 1, types.ErrNotApplicable},
		{"breakable target", leatherHelmet, unbreaking, 3, nil},
		{"not breakable", stone, unbreaking, 1, types.ErrNotApplicable},
		{"unknown", diamondSword, "VORPAL", 1, types.ErrUnknownEnchantment},
		{"alias is not canonical", diamondSword, "DAMAGE_ALL", 1, types.ErrUnknownEnchantment},
		{"empty", diamondSword, "", 1, types.ErrUnknownEnchantment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := item.New(platform, tt.typ)
			err := s.AddEnchantment(tt.ench, tt.level)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.level, s.EnchantmentLevel(tt.ench))
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.False(t, s.HasMeta(), "a rejected enchantment leaves the stack unchanged")
		})
	}
}

func TestAddEnchantments_StopsAtFirstFailure(t *testing.T) {
	s := item.New(platform, diamondSword)
	err := s.AddEnchantments(map[types.Enchantment]int{
		"FIRE_ASPECT": 2,
		sharpness:     9,
		smite:         1,
	})
	assert.ErrorIs(t, err, types.ErrInvalidLevel)
	assert.Equal(t, 2, s.EnchantmentLevel("FIRE_ASPECT"), "entries before the failure stay applied")
	assert.False(t, s.ContainsEnchantment(sharpness))
	assert.False(t, s.ContainsEnchantment(smite), "entries after the failure are not applied")
}

func TestUnsafeEnchantments(t *testing.T) {
	s := item.New(platform, stone).
		AddUnsafeEnchantment(sharpness, 12).
		AddUnsafeEnchantments(map[types.Enchantment]int{efficiency: 7, unbreaking: 1})

	assert.Equal(t, map[types.Enchantment]int{sharpness: 12, efficiency: 7, unbreaking: 1}, s.Enchantments())

	enchants := s.Enchantments()
	enchants[sharpness] = 1
	assert.Equal(t, 12, s.EnchantmentLevel(sharpness), "Enchantments returns a copy")
}

func TestRemoveEnchantment(t *testing.T) {
	s := item.New(platform, diamondSword).AddUnsafeEnchantment(sharpness, 4)

	assert.Equal(t, 0, s.RemoveEnchantment(smite))
	assert.Equal(t, 4, s.RemoveEnchantment(sharpness))
	assert.Equal(t, 0, s.EnchantmentLevel(sharpness))
	assert.False(t, s.HasMeta())
}

func TestHasConflictingEnchant(t *testing.T) {
	s := item.New(platform, diamondSword)
	require.NoError(t, s.AddEnchantment(sharpness, 2))

	assert.True(t, s.HasConflictingEnchant(smite))
	assert.False(t, s.HasConflictingEnchant("FIRE_ASPECT"))
	assert.False(t, s.HasConflictingEnchant(sharpness), "an enchantment does not conflict with itself")
}

func TestItemFlags(t *testing.T) {
	s := item.New(platform, diamondSword)

	s.AddItemFlags(types.FlagHideEnchants, types.FlagHideEnchants, types.FlagHideAttributes)
	assert.Equal(t, []types.ItemFlag{types.FlagHideAttributes, types.FlagHideEnchants}, s.ItemFlags())
	assert.True(t, s.HasItemFlag(types.FlagHideEnchants))

	s.RemoveItemFlags(types.FlagHidePlacedOn)
	assert.Len(t, s.ItemFlags(), 2, "removing an absent flag is a no-op")

	s.RemoveItemFlags(types.FlagHideEnchants, types.FlagHideAttributes)
	assert.Empty(t, s.ItemFlags())
	assert.False(t, s.HasMeta())
}

func TestUnbreakable(t *testing.T) {
	s := item.New(platform, diamondSword)
	assert.False(t, s.IsUnbreakable())

	s.SetUnbreakable(true)
	assert.True(t, s.IsUnbreakable())
	assert.True(t, s.HasMeta())

	s.SetUnbreakable(false)
	assert.False(t, s.HasMeta())
}
