// ABOUTME: Records service: business operations over the record document store
// ABOUTME: Assigns sequential ids, merges partial updates and applies the read/write error policy

package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/bestiary/internal/store"
)

// RecordStore defines what the service needs from storage
type RecordStore interface {
	FindAll(ctx context.Context) ([]*store.Record, error)
	FindByID(ctx context.Context, id int) (*store.Record, error)
	FindByCategory(ctx context.Context, category string) ([]*store.Record, error)
	FindMaxID(ctx context.Context) (int, error)
	Insert(ctx context.Context, rec *store.Record) error
	UpdatePartial(ctx context.Context, id int, sets []store.SetField) error
	DeleteByID(ctx context.Context, id int) error
}

// Listing is the result of a list query.
// Degraded is set when the store failed and Records is empty because of it
// rather than because nothing matched.
type Listing struct {
	Records  []*store.Record
	Degraded bool
}

// Lookup is the result of a single-record query.
// Record is nil when nothing was found; Degraded marks a store failure.
type Lookup struct {
	Record   *store.Record
	Degraded bool
}

// Found reports whether the lookup produced a record
func (l Lookup) Found() bool {
	return l.Record != nil
}

// Service implements list, get, list-by-category, add, update and delete.
// Read failures are logged and reported as empty results; write failures
// are returned to the caller.
type Service struct {
	store  RecordStore
	logger *slog.Logger
}

// New creates a new records Service
func New(store RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger.With("component", "records"),
	}
}

// ListAll returns every record
func (s *Service) ListAll(ctx context.Context) Listing {
	recs, err := s.store.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to retrieve all records", "error", err)
		return Listing{Records: []*store.Record{}, Degraded: true}
	}
	s.logger.Info("retrieved records", "count", len(recs))
	return Listing{Records: nonNil(recs)}
}

// Get returns the record with the given sequential id
func (s *Service) Get(ctx context.Context, id int) Lookup {
	rec, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Info("record not found", "id", id)
		return Lookup{}
	}
	if err != nil {
		s.logger.Error("failed to retrieve record", "id", id, "error", err)
		return Lookup{Degraded: true}
	}
	s.logger.Info("retrieved record", "id", id)
	return Lookup{Record: rec}
}

// ListByCategory returns records whose category matches, ignoring case
func (s *Service) ListByCategory(ctx context.Context, category string) Listing {
	if category == "" {
		return Listing{Records: []*store.Record{}}
	}
	recs, err := s.store.FindByCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to retrieve records by category", "category", category, "error", err)
		return Listing{Records: []*store.Record{}, Degraded: true}
	}
	s.logger.Info("retrieved records by category", "category", category, "count", len(recs))
	return Listing{Records: nonNil(recs)}
}

// Add assigns the next sequential id to rec and inserts it.
// The id is the current maximum plus one; the read and the insert are
// separate round trips, so concurrent adds may collide and one of them
// fails with store.ErrDuplicateID.
func (s *Service) Add(ctx context.Context, rec *store.Record) (*store.Record, error) {
	maxID, err := s.store.FindMaxID(ctx)
	if err != nil {
		s.logger.Error("failed to add record", "error", err)
		return nil, fmt.Errorf("reading max id: %w", err)
	}

	created := *rec
	created.InternalID = ""
	created.ID = maxID + 1

	if err := s.store.Insert(ctx, &created); err != nil {
		s.logger.Error("failed to add record", "id", created.ID, "error", err)
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	s.logger.Info("inserted record", "id", created.ID)
	return &created, nil
}

// Update applies the fields present in patch to the record with the given id.
// A patch with no fields is a successful no-op and does not touch the store.
func (s *Service) Update(ctx context.Context, id int, patch Patch) error {
	sets := patch.Sets()
	if len(sets) == 0 {
		s.logger.Debug("update has no fields, skipping", "id", id)
		return nil
	}

	if err := s.store.UpdatePartial(ctx, id, sets); err != nil {
		s.logger.Error("failed to update record", "id", id, "error", err)
		return fmt.Errorf("updating record %d: %w", id, err)
	}

	s.logger.Info("updated record", "id", id, "fields", len(sets))
	return nil
}

// Delete removes the record with the given id. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		s.logger.Error("failed to delete record", "id", id, "error", err)
		return fmt.Errorf("deleting record %d: %w", id, err)
	}

	s.logger.Info("deleted record", "id", id)
	return nil
}

func nonNil(recs []*store.Record) []*store.Record {
	if recs == nil {
		return []*store.Record{}
	}
	return recs
}
