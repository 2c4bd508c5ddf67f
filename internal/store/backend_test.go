// ABOUTME: Behavior shared by every Store backend, run against mock, SQLite and Mongo
// ABOUTME: Mongo runs only when BESTIARY_TEST_MONGO_URI points at a reachable server

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envTestMongoURI enables the Mongo backend tests
const envTestMongoURI = "BESTIARY_TEST_MONGO_URI"

func TestBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"mock": func(t *testing.T) Store { return NewMockStore() },
		DriverSQLite: func(t *testing.T) Store {
			return openBackend(t, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "b.db")})
		},
		DriverSQLite3: func(t *testing.T) Store {
			return openBackend(t, Options{Driver: DriverSQLite3, Path: filepath.Join(t.TempDir(), "b.db")})
		},
		DriverMongo: openMongoBackend,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("InsertFindDelete", func(t *testing.T) { testInsertFindDelete(t, open(t)) })
			t.Run("CategoryFold", func(t *testing.T) { testCategoryFold(t, open(t)) })
			t.Run("MaxID", func(t *testing.T) { testMaxID(t, open(t)) })
			t.Run("DuplicateID", func(t *testing.T) { testDuplicateID(t, open(t)) })
			t.Run("UpdatePartial", func(t *testing.T) { testUpdatePartial(t, open(t)) })
		})
	}
}

func openBackend(t *testing.T, opts Options) Store {
	t.Helper()
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// openMongoBackend opens a throwaway database that is dropped after the test
func openMongoBackend(t *testing.T) Store {
	t.Helper()
	uri := os.Getenv(envTestMongoURI)
	if uri == "" {
		t.Skipf("%s not set", envTestMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := "bestiary_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	s, err := NewMongoStore(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func testInsertFindDelete(t *testing.T, s Store) {
	ctx := context.Background()

	rec := &Record{ID: 1, Name: "Pikachu", Category: "Electric", Ability: "speed", Level: 2}
	require.NoError(t, s.Insert(ctx, rec))
	assert.NotEmpty(t, rec.InternalID)

	got, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.FindByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteByID(ctx, 1))
	require.NoError(t, s.DeleteByID(ctx, 1))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func testCategoryFold(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.InsertMany(ctx, []*Record{
		{ID: 1, Name: "Pikachu", Category: "Électrique"},
		{ID: 2, Name: "Jolteon", Category: "ÉLECTRIQUE"},
		{ID: 3, Name: "Magnemite", Category: "Electrique"},
		{ID: 4, Name: "Missingno"},
	}))

	records, err := s.FindByCategory(ctx, "électrique")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Pikachu", records[0].Name)
	assert.Equal(t, "Jolteon", records[1].Name)

	records, err = s.FindByCategory(ctx, "ELECTRIQUE")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Magnemite", records[0].Name)

	records, err = s.FindByCategory(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testMaxID(t *testing.T, s Store) {
	ctx := context.Background()

	maxID, err := s.FindMaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, maxID)

	require.NoError(t, s.InsertMany(ctx, []*Record{{ID: 2}, {ID: 11}, {ID: 4}}))

	maxID, err = s.FindMaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, maxID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{2, 4, 11}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func testDuplicateID(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &Record{ID: 7, Name: "Squirtle"}))

	err := s.Insert(ctx, &Record{ID: 7, Name: "Wartortle"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	got, err := s.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Squirtle", got.Name)
}

func testUpdatePartial(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &Record{ID: 4, Name: "Squirtle", Category: "Water", Ability: "shell", Level: 3}))

	require.NoError(t, s.UpdatePartial(ctx, 4, []SetField{
		{Field: FieldLevel, Value: 0},
		{Field: FieldCategory, Value: "Eau"},
	}))

	got, err := s.FindByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Level)
	assert.Equal(t, "Eau", got.Category)
	assert.Equal(t, "Squirtle", got.Name)
	assert.Equal(t, "shell", got.Ability)

	records, err := s.FindByCategory(ctx, "EAU")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Missing ids are a silent no-op
	require.NoError(t, s.UpdatePartial(ctx, 99, []SetField{{Field: FieldName, Value: "Ghost"}}))
	_, err = s.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
