package restaurants

import (
	"context"
	"fmt"

	mongostore "github.com/sabormap/sabormap/pkg/store/mongodb"
)

// Executor is the slice of the document store the repository depends on.
// The production implementation wraps the MongoDB adapter; tests provide
// an in-memory fake.
type Executor interface {
	InsertOne(ctx context.Context, collection string, doc interface{}) (interface{}, error)
	FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error
	Find(ctx context.Context, collection string, filter interface{}, opts mongostore.FindOptions, results interface{}) error
	Count(ctx context.Context, collection string, filter interface{}) (int64, error)
	UpdateOne(ctx context.Context, collection string, filter, update interface{}) (int64, error)
	FindOneAndUpdate(ctx context.Context, collection string, filter, update interface{}, result interface{}) error
	FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error
	Aggregate(ctx context.Context, collection string, pipeline interface{}, results interface{}) error
}

// NewMongoExecutor adapts the MongoDB adapter to the Executor contract.
func NewMongoExecutor(adapter *mongostore.Adapter) (Executor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("mongodb adapter is required")
	}
	return adapter, nil
}
