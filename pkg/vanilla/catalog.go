package vanilla

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

//go:embed catalog.yaml
var catalogYAML []byte

// TargetAll is the enchantment target that matches every material.
const TargetAll = "all"

// namespacePrefix is accepted, and ignored, in front of enchantment names.
const namespacePrefix = "minecraft:"

// Catalog validation errors.
var (
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrDuplicateMaterial = errors.New("duplicate material")
	ErrDuplicateID       = errors.New("duplicate legacy id")
	ErrDuplicateEnchant  = errors.New("duplicate enchantment name or alias")
	ErrUnknownConflict   = errors.New("conflict names an unknown enchantment")
	ErrInvalidLevelRange = errors.New("start level above max level")
)

// catalogFile is the YAML document layout.
type catalogFile struct {
	Materials    []materialDef    `yaml:"materials" validate:"required,dive"`
	Enchantments []enchantmentDef `yaml:"enchantments" validate:"dive"`
}

type materialDef struct {
	Name          string   `yaml:"name" validate:"required,uppercase"`
	ID            int      `yaml:"id" validate:"gte=0"`
	MaxStack      int      `yaml:"max_stack" validate:"gte=-1,ne=0"`
	MaxDurability int      `yaml:"max_durability" validate:"gte=0"`
	Block         bool     `yaml:"block"`
	Data          bool     `yaml:"data"`
	MetaKind      string   `yaml:"meta_kind" validate:"omitempty,oneof=UNSPECIFIC BLOCK_STATE LEATHER_ARMOR SKULL"`
	Tags          []string `yaml:"tags" validate:"dive,required,lowercase"`
}

type enchantmentDef struct {
	Name       string   `yaml:"name" validate:"required,uppercase"`
	Aliases    []string `yaml:"aliases" validate:"dive,required,uppercase"`
	StartLevel int      `yaml:"start_level" validate:"gte=0"`
	MaxLevel   int      `yaml:"max_level" validate:"required,gte=1"`
	Target     string   `yaml:"target" validate:"required,lowercase"`
	Conflicts  []string `yaml:"conflicts" validate:"dive,required,uppercase"`
}

// Material describes one catalog entry.
type Material struct {
	Name          types.Material
	ID            int
	MaxStack      int
	MaxDurability int
	Block         bool
	Data          bool
	MetaKind      types.MetaKind
	Tags          map[string]bool
}

// Enchantment describes one registry entry.
type Enchantment struct {
	Name       types.Enchantment
	StartLevel int
	MaxLevel   int
	Target     string
	Conflicts  map[types.Enchantment]bool
}

// Materials implements types.MaterialCatalog.
type Materials struct {
	byName map[types.Material]*Material
	byID   map[int]*Material
}

// Enchantments implements types.EnchantmentRegistry.
type Enchantments struct {
	materials *Materials
	byName    map[types.Enchantment]*Enchantment
	aliases   map[string]types.Enchantment
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load parses the embedded catalog.
func Load() (*Materials, *Enchantments, error) {
	return Parse(catalogYAML)
}

// LoadFile parses a catalog from a YAML file.
func LoadFile(path string) (*Materials, *Enchantments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates a catalog document.
func Parse(data []byte) (*Materials, *Enchantments, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	mats, err := buildMaterials(file.Materials)
	if err != nil {
		return nil, nil, err
	}
	enchs, err := buildEnchantments(mats, file.Enchantments)
	if err != nil {
		return nil, nil, err
	}
	return mats, enchs, nil
}

// NewPlatform returns an item.Platform over the embedded catalog.
func NewPlatform() (*item.Platform, error) {
	mats, enchs, err := Load()
	if err != nil {
		return nil, err
	}
	return item.NewPlatform(mats, enchs), nil
}

// MustPlatform is NewPlatform that panics on error. The embedded catalog is
// validated by tests, so this only fails on a broken build.
func MustPlatform() *item.Platform {
	p, err := NewPlatform()
	if err != nil {
		panic(err)
	}
	return p
}

func buildMaterials(defs []materialDef) (*Materials, error) {
	m := &Materials{
		byName: make(map[types.Material]*Material, len(defs)),
		byID:   make(map[int]*Material, len(defs)),
	}
	for _, d := range defs {
		name := types.Material(d.Name)
		if _, dup := m.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMaterial, d.Name)
		}
		if _, dup := m.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, d.ID)
		}
		kind := types.MetaKind(d.MetaKind)
		if kind == "" {
			kind = types.MetaUnspecific
		}
		mat := &Material{
			Name:          name,
			ID:            d.ID,
			MaxStack:      d.MaxStack,
			MaxDurability: d.MaxDurability,
			Block:         d.Block,
			Data:          d.Data,
			MetaKind:      kind,
			Tags:          make(map[string]bool, len(d.Tags)),
		}
		for _, t := range d.Tags {
			mat.Tags[t] = true
		}
		m.byName[name] = mat
		m.byID[d.ID] = mat
	}
	return m, nil
}

func buildEnchantments(mats *Materials, defs []enchantmentDef) (*Enchantments, error) {
	e := &Enchantments{
		materials: mats,
		byName:    make(map[types.Enchantment]*Enchantment, len(defs)),
		aliases:   make(map[string]types.Enchantment),
	}
	for _, d := range defs {
		name := types.Enchantment(d.Name)
		if _, dup := e.aliases[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEnchant, d.Name)
		}
		start := d.StartLevel
		if start == 0 {
			start = 1
		}
		if start > d.MaxLevel {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLevelRange, d.Name)
		}
		ench := &Enchantment{
			Name:       name,
			StartLevel: start,
			MaxLevel:   d.MaxLevel,
			Target:     d.Target,
			Conflicts:  make(map[types.Enchantment]bool, len(d.Conflicts)),
		}
		for _, c := range d.Conflicts {
			ench.Conflicts[types.Enchantment(c)] = true
		}
		e.byName[name] = ench
		e.aliases[d.Name] = name
		for _, a := range d.Aliases {
			if _, dup := e.aliases[a]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateEnchant, a)
			}
			e.aliases[a] = name
		}
	}
	for _, ench := range e.byName {
		for c := range ench.Conflicts {
			if _, ok := e.byName[c]; !ok {
				return nil, fmt.Errorf("%w: %s lists %s", ErrUnknownConflict, ench.Name, c)
			}
		}
	}
	return e, nil
}

// Lookup resolves a material by its exact name.
func (m *Materials) Lookup(name string) (types.Material, bool) {
	mat, ok := m.byName[types.Material(name)]
	if !ok {
		return types.MaterialNone, false
	}
	return mat.Name, true
}

// ByLegacyID resolves a material by numeric id.
func (m *Materials) ByLegacyID(id int) (types.Material, bool) {
	mat, ok := m.byID[id]
	if !ok {
		return types.MaterialNone, false
	}
	return mat.Name, true
}

// LegacyID returns the numeric id of mat, or -1.
func (m *Materials) LegacyID(mat types.Material) int {
	if d, ok := m.byName[mat]; ok {
		return d.ID
	}
	return -1
}

// MaxStackSize returns the stack bound of mat, or -1.
func (m *Materials) MaxStackSize(mat types.Material) int {
	if d, ok := m.byName[mat]; ok {
		return d.MaxStack
	}
	return -1
}

// MetaKind returns the metadata kind of mat.
func (m *Materials) MetaKind(mat types.Material) types.MetaKind {
	if d, ok := m.byName[mat]; ok {
		return d.MetaKind
	}
	return types.MetaUnspecific
}

// DefaultData returns 0 for materials that carry legacy data.
func (m *Materials) DefaultData(mat types.Material) (byte, bool) {
	if d, ok := m.byName[mat]; ok && d.Data {
		return 0, true
	}
	return 0, false
}

// Describe returns the full catalog entry for mat.
func (m *Materials) Describe(mat types.Material) (Material, bool) {
	d, ok := m.byName[mat]
	if !ok {
		return Material{}, false
	}
	return *d, true
}

// Lookup resolves an enchantment by name or legacy alias, ignoring case and
// an optional "minecraft:" prefix.
func (e *Enchantments) Lookup(name string) (types.Enchantment, bool) {
	key := strings.ToUpper(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), namespacePrefix))
	ench, ok := e.aliases[key]
	return ench, ok
}

// CanEnchant reports whether ench targets a tag that mat carries.
func (e *Enchantments) CanEnchant(ench types.Enchantment, mat types.Material) bool {
	d, ok := e.byName[ench]
	if !ok {
		return false
	}
	if d.Target == TargetAll {
		return true
	}
	m, ok := e.materials.byName[mat]
	return ok && m.Tags[d.Target]
}

// ValidLevel reports whether level is within ench's start and max level.
func (e *Enchantments) ValidLevel(ench types.Enchantment, level int) bool {
	d, ok := e.byName[ench]
	return ok && level >= d.StartLevel && level <= d.MaxLevel
}

// ConflictsWith reports whether either enchantment lists the other.
func (e *Enchantments) ConflictsWith(a, b types.Enchantment) bool {
	da, okA := e.byName[a]
	db, okB := e.byName[b]
	if !okA || !okB {
		return false
	}
	return da.Conflicts[b] || db.Conflicts[a]
}

// Describe returns the full registry entry for ench.
func (e *Enchantments) Describe(ench types.Enchantment) (Enchantment, bool) {
	d, ok := e.byName[ench]
	if !ok {
		return Enchantment{}, false
	}
	return *d, true
}
