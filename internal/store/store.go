// Package store is the read-only MongoDB layer. It executes model-authored
// aggregation pipelines verbatim and converts results to display strings.
//
// The pipeline is NOT validated, sanitized or cost-bounded before execution.
// This is a deliberate trust boundary inherited from the system design: the
// model-authored query is treated as already safe. The connection is used
// strictly for reads (aggregate, find, distinct, count).
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bankql/bankql/internal/observability"
)

// transactionSampleLimit is the sample size for the debug snapshot.
const transactionSampleLimit = 5

// Store wraps one long-lived MongoDB connection, established at process
// start and reused across requests.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect establishes the MongoDB connection and verifies it with a ping.
// The database is taken from the URI path; defaultDB is used when the URI
// carries none.
func Connect(ctx context.Context, uri, defaultDB string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	name := databaseName(uri, defaultDB)
	logger.Info("connected to mongodb", "database", name)

	return &Store{
		client: client,
		db:     client.Database(name),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting mongodb: %w", err)
	}
	return nil
}

// Name returns the database name in use.
func (s *Store) Name() string {
	return s.db.Name()
}

// Collections lists the collection names in the database.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}

// Aggregate runs the pipeline read-only against the named collection and
// returns the result records with every top-level value converted to its
// display string. Zero matching records is not an error.
func (s *Store) Aggregate(ctx context.Context, collection string, pipeline bson.A) ([]map[string]string, error) {
	start := time.Now()

	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		observability.ObserveAggregation(collection, "error", time.Since(start))
		return nil, fmt.Errorf("aggregating %s: %w", collection, err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		observability.ObserveAggregation(collection, "error", time.Since(start))
		return nil, fmt.Errorf("reading %s results: %w", collection, err)
	}

	observability.ObserveAggregation(collection, "ok", time.Since(start))
	s.logger.Debug("pipeline executed",
		"collection", collection,
		"stages", len(pipeline),
		"results", len(docs),
		"duration", time.Since(start),
	)
	return renderDocuments(docs), nil
}

// TransactionSnapshot is the payload of GET /debug/transactions.
type TransactionSnapshot struct {
	DistinctTypes []string            `json:"distinct_types"`
	Samples       []map[string]string `json:"sample_transactions"`
	TotalCount    int64               `json:"total_count"`
}

// TransactionSnapshot reports the distinct transaction type values, a small
// record sample and the total count, for operator diagnosis of type-matching
// queries.
func (s *Store) TransactionSnapshot(ctx context.Context) (*TransactionSnapshot, error) {
	coll := s.db.Collection("transactions")

	values, err := coll.Distinct(ctx, "type", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct transaction types: %w", err)
	}
	types := make([]string, 0, len(values))
	for _, v := range values {
		types = append(types, displayString(v))
	}

	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetLimit(transactionSampleLimit))
	if err != nil {
		return nil, fmt.Errorf("sampling transactions: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading transaction sample: %w", err)
	}

	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}

	return &TransactionSnapshot{
		DistinctTypes: types,
		Samples:       renderDocuments(docs),
		TotalCount:    count,
	}, nil
}

// databaseName extracts the database from the URI path, falling back to
// fallback when the URI carries none. Both mongodb:// and mongodb+srv://
// URIs parse as URLs.
func databaseName(uri, fallback string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return fallback
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return fallback
	}
	return name
}
