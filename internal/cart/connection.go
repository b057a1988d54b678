package cart

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions carries the env-driven connection settings. Zero values fall
// back to defaults sized for a single service instance.
type MongoOptions struct {
	ConnectTimeout time.Duration
	SelectTimeout  time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

func (o MongoOptions) withDefaults() MongoOptions {
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.SelectTimeout == 0 {
		o.SelectTimeout = 5 * time.Second
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 100
	}
	return o
}

// ConnectMongoDB dials the cart database and verifies the connection with a
// ping against the primary before handing it out.
func ConnectMongoDB(ctx context.Context, uri, database string, opts MongoOptions) (*mongo.Database, error) {
	opts = opts.withDefaults()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.SelectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(opts.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
