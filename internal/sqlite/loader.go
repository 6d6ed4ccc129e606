package sqlite

// JSONL loading for startup.

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// loadItemsJSONL reads items.jsonl and inserts every well-formed item into
// the items table. Loading is transactional: either all rows land or the
// table stays empty. Malformed lines, lines without an ID or type, and
// duplicate IDs are skipped. Unknown fields are ignored so files written by
// newer generations still load. Returns the number of rows inserted.
func loadItemsJSONL(db *sql.DB, dataDir string, logger *zap.Logger) (int, error) {
	path := filepath.Join(dataDir, itemsJSONL)
	records, skipped, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if skipped > 0 {
			logger.Warn("skipped unreadable items", zap.String("path", path), zap.Int("count", skipped))
		}
	}()
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO items (item_id, type, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, raw := range records {
		var it itemJSON
		if err := json.Unmarshal(raw, &it); err != nil {
			skipped++
			continue
		}
		if it.ItemID == "" || it.Type == "" {
			skipped++
			continue
		}
		recJSON, err := json.Marshal(it.Record)
		if err != nil {
			skipped++
			continue
		}
		createdAt := normalizeTime(it.CreatedAt)
		updatedAt := normalizeTime(it.UpdatedAt)
		if _, err := stmt.Exec(it.ItemID, it.Type, string(recJSON), createdAt, updatedAt); err != nil {
			// Constraint violations (duplicate IDs) are skipped.
			skipped++
			continue
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// normalizeTime rewrites an RFC 3339 timestamp in timeLayout. Unparseable
// values become the Unix epoch so that ordering stays well defined.
func normalizeTime(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t = time.Unix(0, 0)
	}
	return formatTime(t)
}
