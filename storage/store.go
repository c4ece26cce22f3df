// Package storage provides the record-store abstraction backing the vault.
package storage

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned by Create when a record with the same kind and
	// id already exists. It is the storage-level uniqueness primitive.
	ErrExists = errors.New("record already exists")
)

// Record is a stored record: an opaque id and its JSON payload.
type Record struct {
	ID   string
	Data []byte
}

// Store defines keyed CRUD access to records grouped by kind. Payloads are
// raw JSON; filtering and ordering happen in the domain layer.
type Store interface {
	// Put creates or replaces the record.
	Put(kind, id string, data []byte) error
	// Create inserts the record, failing with ErrExists if the (kind, id)
	// pair is already present. The check-and-insert is atomic.
	Create(kind, id string, data []byte) error
	// Get returns the record payload, or ErrNotFound.
	Get(kind, id string) ([]byte, error)
	// Delete removes the record, or returns ErrNotFound.
	Delete(kind, id string) error
	// List returns every record of the given kind.
	List(kind string) ([]Record, error)
	// Close releases the backing resources. The store is unusable afterwards.
	Close() error
}
