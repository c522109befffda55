package mongostore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// DialFunc opens a client that is ready for use
type DialFunc func(ctx context.Context, uri string) (*mongo.Client, error)

// Connector owns the process-wide handle to the post collection.
// The first successful Connect establishes it; failures leave it unset so
// the next call dials again. Concurrent callers share one dial and each
// stops waiting when its own context is done.
type Connector struct {
	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
	dials  singleflight.Group

	uri            string
	database       string
	collection     string
	connectTimeout time.Duration
	dial           DialFunc
	logger         *zap.Logger
}

type ConnectorOption func(*Connector)

// WithConnectTimeout bounds a single dial + ping attempt
func WithConnectTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		c.connectTimeout = d
	}
}

// WithDialer replaces the default driver dial
func WithDialer(dial DialFunc) ConnectorOption {
	return func(c *Connector) {
		c.dial = dial
	}
}

func WithLogger(logger *zap.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = logger
	}
}

// NewConnector creates a connector; no I/O happens until Connect
func NewConnector(uri, database, collection string, opts ...ConnectorOption) *Connector {
	c := &Connector{
		uri:            uri,
		database:       database,
		collection:     collection,
		connectTimeout: 10 * time.Second,
		dial:           dialAndPing,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect returns the shared collection handle, dialing on first use
func (c *Connector) Connect(ctx context.Context) (*mongo.Collection, error) {
	if coll := c.current(); coll != nil {
		return coll, nil
	}

	ch := c.dials.DoChan("connect", func() (interface{}, error) {
		return c.connect(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Collection), nil
	case <-ctx.Done():
		return nil, &domain.ConnectionError{Err: fmt.Errorf("waiting for MongoDB connection: %w", ctx.Err())}
	}
}

func (c *Connector) current() *mongo.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coll
}

// connect runs once per flight. The dial is shared by every waiting caller,
// so it is bounded by connectTimeout rather than by the first caller's
// cancellation.
func (c *Connector) connect(ctx context.Context) (*mongo.Collection, error) {
	if coll := c.current(); coll != nil {
		return coll, nil
	}

	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.connectTimeout)
	defer cancel()

	c.logger.Info("connecting to MongoDB",
		zap.String("database", c.database),
		zap.String("collection", c.collection))

	client, err := c.dial(dialCtx, c.uri)
	if err != nil {
		c.logger.Error("MongoDB connection failed", zap.Error(err))
		return nil, &domain.ConnectionError{Err: err}
	}

	c.mu.Lock()
	c.client = client
	c.coll = client.Database(c.database).Collection(c.collection)
	coll := c.coll
	c.mu.Unlock()

	c.logger.Info("connected to MongoDB", zap.String("database", c.database))
	return coll, nil
}

// Disconnect closes the client if one was established
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.coll = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	c.logger.Info("disconnected from MongoDB")
	return nil
}

func dialAndPing(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
