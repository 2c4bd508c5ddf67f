// Package store provides the record document collection for bestiary.
//
// # Architecture
//
// Store is the only persistence contract. Three implementations exist:
//
//   - MongoStore: MongoDB via the official v2 driver (production default)
//   - SQLiteStore: an embedded document collection, one JSON document per row
//   - MockStore: in-memory, for unit tests, with error injection
//
// A single Store instance is constructed at startup and shared by every
// request; all implementations are safe for concurrent use.
//
// # Documents
//
// Each record is stored as a document with the fields id, name, type,
// ability and level, plus a backend-assigned internal id (a Mongo ObjectID
// or a UUID for SQLite). The type field is omitted when a record has no
// category.
//
// Both production backends keep a unique index on id. The records service
// assigns ids by reading the current maximum and incrementing, so two
// concurrent inserts can pick the same id; the index makes the second one
// fail with ErrDuplicateID.
//
// # SQLite Configuration
//
// The SQLite backend uses the JSON1 functions for filtering and partial
// updates:
//
//	SELECT doc FROM records WHERE json_extract(doc, '$.id') = ?
//	UPDATE records SET doc = json_set(doc, '$.level', ?) WHERE ...
//
// The default driver is modernc.org/sqlite; DriverSQLite3 selects
// github.com/mattn/go-sqlite3 (requires cgo).
//
// # Error Handling
//
//   - ErrNotFound: FindByID found no document
//   - ErrDuplicateID: insert collided with an existing id
//
// All methods accept context.Context for cancellation support. No method
// retries.
//
// # Seeding
//
// SeedIfEmpty inserts three starter records when the collection is empty.
// It is called once at startup.
package store
