package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds in UTC, so stored
// timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// recordType extracts the type name a record is indexed under.
func recordType(rec types.Record) (string, error) {
	raw, ok := rec.Get("type")
	if !ok {
		return "", fmt.Errorf("%w: %w", types.ErrInvalidData, types.ErrMissingType)
	}
	name, ok := raw.(string)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: type must be a non-empty string", types.ErrInvalidData)
	}
	return name, nil
}

// Put creates or replaces the record stored under id. An empty id creates
// a new item with a UUID v7. Replacing keeps the original creation time.
func (b *Backend) Put(id string, rec types.Record) (string, error) {
	typeName, err := recordType(rec)
	if err != nil {
		return "", err
	}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrInvalidData, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}

	if id == "" {
		id = generateUUID()
	}
	now := formatTime(time.Now())

	_, err = b.db.Exec(`
		INSERT INTO items (item_id, type, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			type = excluded.type,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		id, typeName, string(recJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("upserting item: %w", err)
	}
	b.cache.Remove(id)

	if err := b.persistOrQueue(id, "put"); err != nil {
		return "", err
	}
	b.logger.Debug("item stored", zap.String("item_id", id), zap.String("type", typeName))
	return id, nil
}

// Get retrieves the entry stored under id. The returned entry is a copy;
// changing it does not affect the store.
func (b *Backend) Get(id string) (*types.Entry, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if e, ok := b.cache.Get(id); ok {
		return copyEntry(e), nil
	}

	row := b.db.QueryRow(
		"SELECT item_id, type, record, created_at, updated_at FROM items WHERE item_id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.cache.Add(id, e)
	return copyEntry(e), nil
}

// Delete removes the entry stored under id.
func (b *Backend) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM items WHERE item_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	b.cache.Remove(id)

	if err := b.persistOrQueue(id, "delete"); err != nil {
		return err
	}
	b.logger.Debug("item deleted", zap.String("item_id", id))
	return nil
}

// Fetch returns entries matching filter, newest first.
func (b *Backend) Fetch(filter map[string]any) ([]*types.Entry, error) {
	query := "SELECT item_id, type, record, created_at, updated_at FROM items"
	var conditions []string
	var args []any

	if typeName, ok := filter["type"]; ok {
		tn, ok := typeName.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "type = ?")
		args = append(args, tn)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, item_id DESC"

	limit := -1
	if raw, ok := filter["limit"]; ok {
		l, ok := types.IntValue(raw)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if l > 0 {
			limit = l
		}
	}
	// SQLite requires LIMIT before OFFSET; -1 means no limit.
	query += fmt.Sprintf(" LIMIT %d", limit)
	if raw, ok := filter["offset"]; ok {
		o, ok := types.IntValue(raw)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if o > 0 {
			query += fmt.Sprintf(" OFFSET %d", o)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	defer rows.Close()

	results := []*types.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*types.Entry, error) {
	var e types.Entry
	var recJSON, createdAt, updatedAt string
	if err := row.Scan(&e.ItemID, &e.Type, &recJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	if err := json.Unmarshal([]byte(recJSON), &e.Record); err != nil {
		return nil, fmt.Errorf("parsing item %s record: %w", e.ItemID, err)
	}
	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing item created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing item updated_at: %w", err)
	}
	return &e, nil
}

func copyEntry(e *types.Entry) *types.Entry {
	out := *e
	out.Record = e.Record.Clone()
	return &out
}

// persistItemsJSONL rewrites items.jsonl from the items table, oldest
// first. The caller must hold b.mu.
func (b *Backend) persistItemsJSONL() error {
	rows, err := b.db.Query(
		"SELECT item_id, type, record, created_at, updated_at FROM items ORDER BY created_at, item_id")
	if err != nil {
		return fmt.Errorf("reading items for JSONL: %w", err)
	}
	defer rows.Close()

	var lines []json.RawMessage
	for rows.Next() {
		var it itemJSON
		var recJSON string
		if err := rows.Scan(&it.ItemID, &it.Type, &recJSON, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return fmt.Errorf("scanning item for JSONL: %w", err)
		}
		if err := json.Unmarshal([]byte(recJSON), &it.Record); err != nil {
			return fmt.Errorf("parsing item %s record: %w", it.ItemID, err)
		}
		line, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshaling item %s: %w", it.ItemID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, itemsJSONL), lines)
}
