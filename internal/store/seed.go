// ABOUTME: Starter data inserted into an empty records collection
// ABOUTME: SeedIfEmpty runs once at startup, before the HTTP server accepts requests

package store

import (
	"context"
	"fmt"
	"log/slog"
)

// SeedRecords returns the three starter records with ids 1 through 3
func SeedRecords() []*Record {
	return []*Record{
		{ID: 1, Name: "Pikachu", Category: "Electric", Ability: "speed", Level: 2},
		{ID: 2, Name: "Charmander", Category: "Fire", Ability: "speed", Level: 2},
		{ID: 3, Name: "Bulbasaur", Category: "Grass", Ability: "speed", Level: 2},
	}
}

// SeedIfEmpty inserts SeedRecords when the collection holds no documents.
// It returns the number of records inserted.
func SeedIfEmpty(ctx context.Context, s Store, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	n, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	if n > 0 {
		logger.Debug("records collection already populated, skipping seed", "count", n)
		return 0, nil
	}

	logger.Info("records collection is empty, seeding initial data")
	seed := SeedRecords()
	if err := s.InsertMany(ctx, seed); err != nil {
		return 0, fmt.Errorf("seeding records: %w", err)
	}
	logger.Info("inserted initial records", "count", len(seed))
	return len(seed), nil
}
