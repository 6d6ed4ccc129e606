package types

import "time"

// Entry is one persisted item: its record plus bookkeeping.
type Entry struct {
	ItemID    string    `json:"item_id"`
	Type      string    `json:"type"`
	Record    Record    `json:"record"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists item records. Callers attach to a backend, read and write
// records by ID, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// Put creates or replaces a record. When id is empty a new UUID v7 is
	// generated. Returns the ID used.
	Put(id string, rec Record) (string, error)

	// Get retrieves the entry with the given ID.
	// Returns ErrNotFound if no entry exists with that ID.
	Get(id string) (*Entry, error)

	// Delete removes the entry with the given ID.
	// Returns ErrNotFound if no entry exists with that ID.
	Delete(id string) error

	// Fetch returns all entries matching the filter, newest first. An empty
	// filter returns every entry. Recognized keys: "type" (string),
	// "limit" and "offset" (integers).
	Fetch(filter map[string]any) ([]*Entry, error)
}
