package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// MongoStorage writes one document per report to a MongoDB collection.
// Reports are never read back.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(ctx context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, reportDocument(report)); err != nil {
		return storeError(s.Name(), fmt.Errorf("mongodb insert: %w", err))
	}

	s.count++
	s.logger.Debug("report stored in mongodb", "run_id", report.RunID, "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_reports", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// reportDocument keys the document by run ID and adds the headline total for queries.
func reportDocument(r *types.Report) bson.D {
	items := 0
	for _, res := range r.Results {
		items += len(res.Items)
	}
	return bson.D{
		{Key: "_id", Value: r.RunID},
		{Key: "started_at", Value: r.StartedAt},
		{Key: "finished_at", Value: r.FinishedAt},
		{Key: "elapsed_ms", Value: r.Elapsed.Milliseconds()},
		{Key: "ok", Value: r.OK},
		{Key: "count", Value: r.Count},
		{Key: "succeeded", Value: r.Succeeded()},
		{Key: "items", Value: items},
		{Key: "results", Value: r.Results},
	}
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes reports to multiple backends.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

// Store writes to every backend even if one fails and returns the first
// error as a *types.StorageError naming that backend.
func (s *MultiStorage) Store(ctx context.Context, report *types.Report) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, report); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = storeError(backend.Name(), err)
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
