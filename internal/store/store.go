// ABOUTME: Store interface and Record type for bestiary persistence
// ABOUTME: Defines the document collection contract shared by Mongo, SQLite and mock backends

package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/cases"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned when an insert collides with an existing sequential id.
// Two concurrent adds can read the same maximum id; the unique index turns the
// loser into this error instead of a silent duplicate.
var ErrDuplicateID = errors.New("duplicate record id")

// CollectionName is the collection (or table) holding record documents
const CollectionName = "records"

// Document field names. These are shared by the wire format and the stored documents.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldCategory = "type"
	FieldAbility  = "ability"
	FieldLevel    = "level"
)

// Record is a single creature document.
// InternalID is assigned by the backend on insert and is opaque to callers;
// ID is the public sequential identifier assigned by the records service.
type Record struct {
	InternalID string `json:"internal_id,omitempty"`
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"type,omitempty"`
	Ability    string `json:"ability"`
	Level      int    `json:"level"`
}

// SetField is one "set" instruction of a partial update
type SetField struct {
	Field string
	Value any
}

// Store defines the document operations the records service needs.
// Implementations are safe for concurrent use; a single instance is shared
// across all requests.
type Store interface {
	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Count returns the number of record documents
	Count(ctx context.Context) (int64, error)

	FindAll(ctx context.Context) ([]*Record, error)
	FindByID(ctx context.Context, id int) (*Record, error)

	// FindByCategory matches the category case-insensitively.
	// Records without a category never match.
	FindByCategory(ctx context.Context, category string) ([]*Record, error)

	// FindMaxID returns the highest sequential id, or 0 for an empty collection
	FindMaxID(ctx context.Context) (int, error)

	// Insert stores rec and sets rec.InternalID
	Insert(ctx context.Context, rec *Record) error
	InsertMany(ctx context.Context, recs []*Record) error

	// UpdatePartial applies all sets to the record with the given id in one operation.
	// It is not an error for no record to match.
	UpdatePartial(ctx context.Context, id int, sets []SetField) error

	// DeleteByID removes the record with the given id; missing ids are not an error
	DeleteByID(ctx context.Context, id int) error

	// Close releases any resources held by the store
	Close() error
}

// isUpdatableField reports whether field may appear in a SetField.
// The sequential id and internal id are never updated.
func isUpdatableField(field string) bool {
	switch field {
	case FieldName, FieldCategory, FieldAbility, FieldLevel:
		return true
	}
	return false
}

// validateSets rejects set instructions that target unknown fields
func validateSets(sets []SetField) error {
	for _, s := range sets {
		if !isUpdatableField(s.Field) {
			return fmt.Errorf("field %q cannot be updated", s.Field)
		}
	}
	return nil
}

// foldCategory returns the Unicode case-folded form used for category matching.
// A Caser holds state, so each call gets its own.
func foldCategory(category string) string {
	return cases.Fold().String(category)
}
