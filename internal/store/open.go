// ABOUTME: Backend selection for the record store
// ABOUTME: Opens Mongo or one of the SQLite drivers from connection options

package store

import (
	"context"
	"fmt"
	"log/slog"
)

// DriverMongo selects the MongoDB backend
const DriverMongo = "mongo"

// Options describes how to reach the record store
type Options struct {
	Driver           string // mongo | sqlite | sqlite3
	ConnectionString string // mongo only
	Database         string // mongo only
	Path             string // sqlite drivers only

	// Logger receives store log lines; nil means slog.Default()
	Logger *slog.Logger
}

// Open connects to the configured backend, verifies it responds to a ping
// and prepares the records collection. An empty driver selects Mongo.
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Driver {
	case DriverMongo, "":
		s, err := newMongoStore(ctx, opts.ConnectionString, opts.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return s, nil
	case DriverSQLite, DriverSQLite3:
		s, err := newSQLiteStore(opts.Driver, opts.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}
