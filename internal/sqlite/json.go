package sqlite

import "github.com/mesh-intelligence/satchel/pkg/types"

// itemJSON represents an item in items.jsonl.
type itemJSON struct {
	ItemID    string       `json:"item_id"`
	Type      string       `json:"type"`
	Record    types.Record `json:"record"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}
