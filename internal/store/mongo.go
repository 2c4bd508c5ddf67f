// ABOUTME: MongoDB implementation of the Store interface
// ABOUTME: Wraps a single shared client and the records collection handle

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoRecord is the stored shape of a Record in MongoDB
type mongoRecord struct {
	ObjectID bson.ObjectID `bson:"_id,omitempty"`
	ID       int           `bson:"id"`
	Name     string        `bson:"name"`
	Category string        `bson:"type,omitempty"`
	Ability  string        `bson:"ability"`
	Level    int           `bson:"level"`
}

func toMongoRecord(rec *Record) mongoRecord {
	doc := mongoRecord{
		ID:       rec.ID,
		Name:     rec.Name,
		Category: rec.Category,
		Ability:  rec.Ability,
		Level:    rec.Level,
	}
	if oid, err := bson.ObjectIDFromHex(rec.InternalID); err == nil {
		doc.ObjectID = oid
	}
	return doc
}

func (m mongoRecord) toRecord() *Record {
	rec := &Record{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Ability:  m.Ability,
		Level:    m.Level,
	}
	if !m.ObjectID.IsZero() {
		rec.InternalID = m.ObjectID.Hex()
	}
	return rec
}

// caseInsensitive compares strings at collation strength 2 (base letters and accents, not case)
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// MongoStore implements the Store interface using MongoDB
type MongoStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB, verifies the connection with a ping and
// selects the records collection. A unique index on the sequential id is
// created if missing.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	return newMongoStore(ctx, uri, database, slog.Default())
}

func newMongoStore(ctx context.Context, uri, database string, base *slog.Logger) (*MongoStore, error) {
	logger := base.With("component", "store", "backend", "mongo")

	if uri == "" {
		return nil, errors.New("mongo connection string is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	logger.Info("connecting to MongoDB", "database", database)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	db := client.Database(database)
	if err := db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := &MongoStore{
		client:     client,
		db:         db,
		collection: db.Collection(CollectionName),
		logger:     logger,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	logger.Info("connected to MongoDB", "database", database, "collection", CollectionName)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: FieldID, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_records_id"),
		},
		{
			Keys:    bson.D{{Key: FieldCategory, Value: 1}},
			Options: options.Index().SetCollation(caseInsensitive).SetName("idx_records_type"),
		},
	})
	return err
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	s.logger.Info("closing MongoDB store")
	return s.client.Disconnect(context.Background())
}

// Ping runs the ping command against the configured database
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Count returns the number of record documents
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// FindAll returns every record ordered by sequential id
func (s *MongoStore) FindAll(ctx context.Context) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: FieldID, Value: 1}})
	return s.find(ctx, bson.D{}, opts)
}

// FindByID retrieves a record by sequential id.
// Returns ErrNotFound if the record doesn't exist.
func (s *MongoStore) FindByID(ctx context.Context, id int) (*Record, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return doc.toRecord(), nil
}

// FindByCategory matches the category using a case-insensitive collation
func (s *MongoStore) FindByCategory(ctx context.Context, category string) ([]*Record, error) {
	if category == "" {
		return []*Record{}, nil
	}
	opts := options.Find().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: FieldID, Value: 1}})
	return s.find(ctx, categoryFilter(category), opts)
}

// FindMaxID returns the highest sequential id, or 0 if the collection is empty
func (s *MongoStore) FindMaxID(ctx context.Context) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: FieldID, Value: -1}}).
		SetProjection(bson.D{{Key: FieldID, Value: 1}})

	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying max id: %w", err)
	}
	return doc.ID, nil
}

// Insert stores a new record and assigns its internal id.
// Returns ErrDuplicateID if the sequential id is already taken.
func (s *MongoStore) Insert(ctx context.Context, rec *Record) error {
	doc := toMongoRecord(rec)
	doc.ObjectID = bson.NewObjectID()

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("inserting record: %w", err)
	}

	rec.InternalID = doc.ObjectID.Hex()
	s.logger.Debug("inserted record", "id", rec.ID, "internal_id", rec.InternalID)
	return nil
}

// InsertMany stores all records with a single ordered insert
func (s *MongoStore) InsertMany(ctx context.Context, recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}

	docs := make([]any, 0, len(recs))
	ids := make([]bson.ObjectID, 0, len(recs))
	for _, rec := range recs {
		doc := toMongoRecord(rec)
		doc.ObjectID = bson.NewObjectID()
		docs = append(docs, doc)
		ids = append(ids, doc.ObjectID)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("inserting records: %w", err)
	}

	for i, rec := range recs {
		rec.InternalID = ids[i].Hex()
	}
	return nil
}

// UpdatePartial combines all sets into one $set and applies it with UpdateOne
func (s *MongoStore) UpdatePartial(ctx context.Context, id int, sets []SetField) error {
	if len(sets) == 0 {
		return nil
	}
	update, err := buildUpdate(sets)
	if err != nil {
		return err
	}

	result, err := s.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	s.logger.Debug("updated record", "id", id, "fields", len(sets), "matched", result.MatchedCount)
	return nil
}

// DeleteByID removes the record with the given sequential id
func (s *MongoStore) DeleteByID(ctx context.Context, id int) error {
	result, err := s.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	s.logger.Debug("deleted record", "id", id, "matched", result.DeletedCount)
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter any, opts *options.FindOptionsBuilder) ([]*Record, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	records := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toRecord())
	}
	return records, nil
}

func idFilter(id int) bson.D {
	return bson.D{{Key: FieldID, Value: id}}
}

// categoryFilter matches an exact category; case folding comes from the collation
// attached to the query.
func categoryFilter(category string) bson.D {
	return bson.D{{Key: FieldCategory, Value: category}}
}

// buildUpdate turns set instructions into a single $set document
func buildUpdate(sets []SetField) (bson.D, error) {
	if err := validateSets(sets); err != nil {
		return nil, err
	}
	fields := make(bson.D, 0, len(sets))
	for _, set := range sets {
		fields = append(fields, bson.E{Key: set.Field, Value: set.Value})
	}
	return bson.D{{Key: "$set", Value: fields}}, nil
}
