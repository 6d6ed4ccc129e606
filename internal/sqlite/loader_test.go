package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func TestLoadItemsJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"item_id":"a","type":"STONE","record":{"type":"STONE","amount":3},"created_at":"2025-01-15T10:00:00Z","updated_at":"2025-01-15T10:00:00Z"}
{malformed
{"item_id":"","type":"STONE","record":{"type":"STONE"},"created_at":"2025-01-15T10:00:00Z","updated_at":"2025-01-15T10:00:00Z"}
{"item_id":"b","type":"","record":{},"created_at":"2025-01-15T10:00:00Z","updated_at":"2025-01-15T10:00:00Z"}
{"item_id":"a","type":"DIRT","record":{"type":"DIRT"},"created_at":"2025-01-15T11:00:00Z","updated_at":"2025-01-15T11:00:00Z"}
{"item_id":"c","type":"DIRT","record":{"type":"DIRT"},"created_at":"not a time","updated_at":"2025-01-15T11:00:00Z","future_field":{"x":1}}
`
	if err := os.WriteFile(filepath.Join(tmpDir, itemsJSONL), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zap.WarnLevel)
	b := attachTestBackend(t, tmpDir, nil, WithLogger(zap.New(core)))
	defer b.Detach()

	warnings := logs.FilterMessage("skipped unreadable items").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one skip warning, got %d", len(warnings))
	}
	if got := warnings[0].ContextMap()["count"]; got != int64(4) {
		t.Errorf("expected 4 skipped rows, got %v", got)
	}

	all, err := b.Fetch(nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 loaded items, got %d", len(all))
	}

	a, err := b.Get("a")
	if err != nil {
		t.Fatalf("Get a failed: %v", err)
	}
	if a.Type != "STONE" {
		t.Errorf("first occurrence of a duplicate ID should win, got type %s", a.Type)
	}

	c, err := b.Get("c")
	if err != nil {
		t.Fatalf("Get c failed: %v", err)
	}
	if c.CreatedAt.Unix() != 0 {
		t.Errorf("unparseable created_at should load as epoch, got %v", c.CreatedAt)
	}
}

func TestLoadItemsJSONLEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	b := attachTestBackend(t, tmpDir, nil)
	defer b.Detach()

	got, err := b.Fetch(map[string]any{"type": "STONE"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty stash, got %d", len(got))
	}
}

func TestRoundTripAcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()
	b := attachTestBackend(t, tmpDir, nil)
	rec := types.NewRecord()
	rec.Set("type", "LEATHER_HELMET")
	meta := types.NewRecord()
	meta.Set("meta-type", "LEATHER_ARMOR")
	meta.Set("display-name", "Cap")
	rec.Set("meta", meta)
	id, err := b.Put("", rec)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	b.Detach()

	b2 := attachTestBackend(t, tmpDir, nil)
	defer b2.Detach()
	e, err := b2.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	m, ok := types.MapValue(mustGet(t, e.Record, "meta"))
	if !ok {
		t.Fatal("meta should decode as a record")
	}
	if name, _ := m.Get("display-name"); name != "Cap" {
		t.Errorf("expected display-name Cap, got %v", name)
	}
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "meta-type" {
		t.Errorf("meta key order lost: %v", keys)
	}
}
