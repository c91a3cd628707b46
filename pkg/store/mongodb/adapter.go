// Package mongodb provides MongoDB connectivity for the service.
package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sabormap/sabormap/pkg/observability/logger"
)

// Adapter holds the process-wide MongoDB client. It is created once at
// startup and closed at shutdown; every operation applies the configured
// operation timeout unless the caller already set a deadline.
type Adapter struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Config holds MongoDB adapter configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// FindOptions carries sort, skip and limit for Find queries.
type FindOptions struct {
	Sort  interface{}
	Skip  int64
	Limit int64
}

// NewAdapter connects to MongoDB and verifies connectivity with a ping.
// Connection failure here is fatal for the process.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Adapter{
		client:   client,
		database: cfg.Database,
		logger:   log,
		timeout:  cfg.OperationTimeout,
	}, nil
}

func (a *Adapter) Client() *mongo.Client {
	return a.client
}

func (a *Adapter) Database() *mongo.Database {
	return a.client.Database(a.database)
}

func (a *Adapter) Collection(name string) *mongo.Collection {
	return a.Database().Collection(name)
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb adapter is closed")
	}
	return a.client.Ping(ctx, readpref.Primary())
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("MongoDB health check failed", "error", err)
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

// InsertOne inserts a document and returns the store-assigned identifier.
func (a *Adapter) InsertOne(ctx context.Context, collection string, doc interface{}) (interface{}, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).InsertOne(opCtx, doc)
	if err != nil {
		return nil, err
	}
	return result.InsertedID, nil
}

// FindOne decodes the first document matching filter into result.
// Returns mongo.ErrNoDocuments when nothing matches.
func (a *Adapter) FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).FindOne(opCtx, filter).Decode(result)
}

// Find decodes all documents matching filter into results, honoring sort,
// skip and limit.
func (a *Adapter) Find(ctx context.Context, collection string, filter interface{}, opts FindOptions, results interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	findOpts := options.Find()
	if opts.Sort != nil {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := a.Collection(collection).Find(opCtx, filter, findOpts)
	if err != nil {
		return err
	}
	return cursor.All(opCtx, results)
}

// Count returns the number of documents matching filter.
func (a *Adapter) Count(ctx context.Context, collection string, filter interface{}) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).CountDocuments(opCtx, filter)
}

// UpdateOne applies update to the first document matching filter and
// returns the matched count.
func (a *Adapter) UpdateOne(ctx context.Context, collection string, filter, update interface{}) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).UpdateOne(opCtx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// FindOneAndUpdate applies update and decodes the post-update document into
// result. Returns mongo.ErrNoDocuments when nothing matches.
func (a *Adapter) FindOneAndUpdate(ctx context.Context, collection string, filter, update interface{}, result interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return a.Collection(collection).FindOneAndUpdate(opCtx, filter, update, opts).Decode(result)
}

// FindOneAndDelete removes the first document matching filter and decodes
// its last snapshot into result.
func (a *Adapter) FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).FindOneAndDelete(opCtx, filter).Decode(result)
}

// DeleteOne removes the first document matching filter and returns the
// deleted count.
func (a *Adapter) DeleteOne(ctx context.Context, collection string, filter interface{}) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).DeleteOne(opCtx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Aggregate runs pipeline and decodes all resulting documents into results.
func (a *Adapter) Aggregate(ctx context.Context, collection string, pipeline interface{}, results interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	cursor, err := a.Collection(collection).Aggregate(opCtx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(opCtx, results)
}

// EnsureGeoIndex creates a 2dsphere index on field, used by proximity search.
// Creating an index that already exists is a no-op on the server.
func (a *Adapter) EnsureGeoIndex(ctx context.Context, collection, field string) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	_, err := a.Collection(collection).Indexes().CreateOne(opCtx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create 2dsphere index on %s.%s: %w", collection, field, err)
	}
	return nil
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
