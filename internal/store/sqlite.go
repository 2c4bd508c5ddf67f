// ABOUTME: SQLite implementation of the Store interface as an embedded document collection
// ABOUTME: Each record is a JSON document in one row, queried through the JSON1 functions

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names accepted by NewSQLiteStoreWithDriver
const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path using the pure Go driver.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithDriver(DriverSQLite, path)
}

// NewSQLiteStoreWithDriver creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStoreWithDriver(driver, path string) (*SQLiteStore, error) {
	return newSQLiteStore(driver, path, slog.Default())
}

func newSQLiteStore(driver, path string, base *slog.Logger) (*SQLiteStore, error) {
	logger := base.With("component", "store", "backend", driver)

	if driver != DriverSQLite && driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps :memory: databases intact
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the records table and its indexes if they don't exist.
// type_fold holds the Unicode case-folded category; SQLite's lower() only
// folds ASCII, so folding happens in Go on every write that sets the category.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			internal_id TEXT PRIMARY KEY,
			doc         TEXT NOT NULL CHECK (json_valid(doc)),
			type_fold   TEXT NOT NULL DEFAULT ''
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_records_id
			ON records(json_extract(doc, '$.id'));

		DROP INDEX IF EXISTS idx_records_type;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if err := s.migrateTypeFold(); err != nil {
		return fmt.Errorf("migrating type_fold: %w", err)
	}

	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_records_type_fold ON records(type_fold)`)
	return err
}

// migrateTypeFold adds and backfills type_fold on databases created before it existed
func (s *SQLiteStore) migrateTypeFold() error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('records')`)
	if err != nil {
		return err
	}
	found := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		if name == "type_fold" {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if found {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE records ADD COLUMN type_fold TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}

	// Collect first: the pool has a single connection
	rows, err = s.db.Query(`SELECT internal_id, COALESCE(json_extract(doc, '$.type'), '') FROM records`)
	if err != nil {
		return err
	}
	folds := map[string]string{}
	for rows.Next() {
		var internalID, category string
		if err := rows.Scan(&internalID, &category); err != nil {
			rows.Close()
			return err
		}
		folds[internalID] = foldCategory(category)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for internalID, fold := range folds {
		if _, err := s.db.Exec(`UPDATE records SET type_fold = ? WHERE internal_id = ?`, fold, internalID); err != nil {
			return err
		}
	}

	s.logger.Info("backfilled category fold column", "records", len(folds))
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ping verifies the database connection is alive
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the number of stored records
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// FindAll returns every record ordered by sequential id
func (s *SQLiteStore) FindAll(ctx context.Context) ([]*Record, error) {
	query := `
		SELECT internal_id, doc
		FROM records
		ORDER BY json_extract(doc, '$.id') ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByID retrieves a record by sequential id.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) FindByID(ctx context.Context, id int) (*Record, error) {
	query := `
		SELECT internal_id, doc
		FROM records
		WHERE json_extract(doc, '$.id') = ?
	`

	var internalID, doc string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&internalID, &doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}

	return decodeRecord(internalID, doc)
}

// FindByCategory returns records whose category equals category under
// Unicode case folding. Records without a category never match.
func (s *SQLiteStore) FindByCategory(ctx context.Context, category string) ([]*Record, error) {
	query := `
		SELECT internal_id, doc
		FROM records
		WHERE type_fold <> '' AND type_fold = ?
		ORDER BY json_extract(doc, '$.id') ASC
	`

	rows, err := s.db.QueryContext(ctx, query, foldCategory(category))
	if err != nil {
		return nil, fmt.Errorf("querying records by category: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindMaxID returns the highest sequential id, or 0 if there are no records
func (s *SQLiteStore) FindMaxID(ctx context.Context) (int, error) {
	var maxID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(json_extract(doc, '$.id')), 0) FROM records`,
	).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("querying max id: %w", err)
	}
	return int(maxID), nil
}

// Insert stores a new record document and assigns its internal id.
// Returns ErrDuplicateID if the sequential id is already taken.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	return s.insert(ctx, s.db, rec)
}

// InsertMany stores all records in a single transaction
func (s *SQLiteStore) InsertMany(ctx context.Context, recs []*Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range recs {
		if err := s.insert(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, db execer, rec *Record) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return err
	}

	internalID := uuid.New().String()
	_, err = db.ExecContext(ctx,
		`INSERT INTO records (internal_id, doc, type_fold) VALUES (?, ?, ?)`,
		internalID, doc, foldCategory(rec.Category),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("inserting record: %w", err)
	}

	rec.InternalID = internalID
	s.logger.Debug("inserted record", "id", rec.ID, "internal_id", internalID)
	return nil
}

// UpdatePartial sets the given fields on the record with the given sequential id
// using a single json_set call.
func (s *SQLiteStore) UpdatePartial(ctx context.Context, id int, sets []SetField) error {
	if len(sets) == 0 {
		return nil
	}
	if err := validateSets(sets); err != nil {
		return err
	}

	// Field names come from the fixed set checked above, never from input
	paths := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+2)
	fold, setsCategory := "", false
	for _, set := range sets {
		paths = append(paths, "'$."+set.Field+"', ?")
		args = append(args, set.Value)
		if set.Field == FieldCategory {
			category, _ := set.Value.(string)
			fold, setsCategory = foldCategory(category), true
		}
	}

	query := `UPDATE records SET doc = json_set(doc, ` + strings.Join(paths, ", ") + `)`
	if setsCategory {
		query += `, type_fold = ?`
		args = append(args, fold)
	}
	query += ` WHERE json_extract(doc, '$.id') = ?`
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	s.logger.Debug("updated record", "id", id, "fields", len(sets), "matched", rowsAffected)
	return nil
}

// DeleteByID removes the record with the given sequential id
func (s *SQLiteStore) DeleteByID(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE json_extract(doc, '$.id') = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	s.logger.Debug("deleted record", "id", id, "matched", rowsAffected)
	return nil
}

// encodeDocument renders rec as the stored JSON document.
// The internal id lives in its own column and is left out of the document.
func encodeDocument(rec *Record) (string, error) {
	doc := *rec
	doc.InternalID = ""
	data, err := json.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	return string(data), nil
}

func decodeRecord(internalID, doc string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", internalID, err)
	}
	rec.InternalID = internalID
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	records := []*Record{}
	for rows.Next() {
		var internalID, doc string
		if err := rows.Scan(&internalID, &doc); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		rec, err := decodeRecord(internalID, doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}

	return records, nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation.
// CHECK and NOT NULL failures are not id collisions and do not match.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
