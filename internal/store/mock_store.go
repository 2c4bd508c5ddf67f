// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite or MongoDB and to inject backend failures

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	records map[int]*Record // keyed by sequential id
	nextOID int

	// Err, when set, is returned by every operation except Close
	Err error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[int]*Record),
	}
}

// SetErr makes every subsequent operation fail with err (nil restores normal behavior)
func (m *MockStore) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Ping reports the injected error, if any.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Count returns the number of stored records.
func (m *MockStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.records)), nil
}

// FindAll returns copies of all records ordered by id.
func (m *MockStore) FindAll(ctx context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(*Record) bool { return true }), nil
}

// FindByID retrieves a record by id.
func (m *MockStore) FindByID(ctx context.Context, id int) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *rec
	return &result, nil
}

// FindByCategory matches categories with Unicode case folding.
func (m *MockStore) FindByCategory(ctx context.Context, category string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	want := foldCategory(category)
	return m.sorted(func(r *Record) bool {
		return r.Category != "" && foldCategory(r.Category) == want
	}), nil
}

// FindMaxID returns the highest id, or 0 when empty.
func (m *MockStore) FindMaxID(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}

	maxID := 0
	for id := range m.records {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

// Insert stores a copy of rec.
func (m *MockStore) Insert(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	return m.insertLocked(rec)
}

// InsertMany stores copies of all records.
func (m *MockStore) InsertMany(ctx context.Context, recs []*Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, rec := range recs {
		if err := m.insertLocked(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockStore) insertLocked(rec *Record) error {
	if _, exists := m.records[rec.ID]; exists {
		return ErrDuplicateID
	}

	m.nextOID++
	rec.InternalID = fmt.Sprintf("%024x", m.nextOID)

	// Make a copy to avoid external modification
	r := *rec
	m.records[r.ID] = &r
	return nil
}

// UpdatePartial applies the sets to the stored record, if present.
func (m *MockStore) UpdatePartial(ctx context.Context, id int, sets []SetField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := validateSets(sets); err != nil {
		return err
	}

	rec, ok := m.records[id]
	if !ok {
		return nil
	}

	updated := *rec
	for _, set := range sets {
		if err := applySet(&updated, set); err != nil {
			return err
		}
	}
	m.records[id] = &updated
	return nil
}

// DeleteByID removes a record; missing ids are ignored.
func (m *MockStore) DeleteByID(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.records, id)
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// sorted returns copies of matching records ordered by id. Caller holds the lock.
func (m *MockStore) sorted(match func(*Record) bool) []*Record {
	result := []*Record{}
	for _, rec := range m.records {
		if match(rec) {
			r := *rec
			result = append(result, &r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func applySet(rec *Record, set SetField) error {
	switch set.Field {
	case FieldName, FieldCategory, FieldAbility:
		v, ok := set.Value.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string, got %T", set.Field, set.Value)
		}
		switch set.Field {
		case FieldName:
			rec.Name = v
		case FieldCategory:
			rec.Category = v
		case FieldAbility:
			rec.Ability = v
		}
	case FieldLevel:
		v, ok := set.Value.(int)
		if !ok {
			return fmt.Errorf("field %q expects an int, got %T", set.Field, set.Value)
		}
		rec.Level = v
	}
	return nil
}

// Compile-time interface checks
var (
	_ Store = (*MockStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MongoStore)(nil)
)
