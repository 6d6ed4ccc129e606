package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. The record column holds the item record as JSON with its key
// order preserved.
const (
	createItems = `CREATE TABLE items (
    item_id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    record TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxItemsType    = `CREATE INDEX idx_items_type ON items(type);`
	idxItemsCreated = `CREATE INDEX idx_items_created ON items(created_at);`
)

// schemaDDL lists all statements in execution order.
var schemaDDL = []string{
	createItems,
	idxItemsType,
	idxItemsCreated,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
