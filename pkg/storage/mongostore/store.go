package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

var _ domain.PostStore = (*Store)(nil)

// CollectionSource hands out the collection the store operates on
type CollectionSource interface {
	Connect(ctx context.Context) (*mongo.Collection, error)
	Disconnect(ctx context.Context) error
}

// Store implements domain.PostStore on top of a MongoDB collection
type Store struct {
	source  CollectionSource
	timeout time.Duration
	logger  *zap.Logger
}

type StoreOption func(*Store)

// WithOperationTimeout bounds every store round-trip
func WithOperationTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = d
	}
}

func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store over the given collection source
func NewStore(source CollectionSource, opts ...StoreOption) *Store {
	s := &Store{
		source:  source,
		timeout: 5 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// postFields is the stored shape of a post without its key
type postFields struct {
	Title string `bson:"title"`
	Body  string `bson:"body"`
}

// collection derives the operation deadline first so that waiting for the
// connection counts against it
func (s *Store) collection(ctx context.Context) (*mongo.Collection, context.Context, context.CancelFunc, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	coll, err := s.source.Connect(opCtx)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return coll, opCtx, cancel, nil
}

// Create inserts a new post and returns it with the generated id
func (s *Store) Create(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	res, err := coll.InsertOne(opCtx, postFields{Title: in.Title, Body: in.Body})
	if err != nil {
		return nil, classify("insert post", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, &domain.StoreError{Op: "insert post", Err: fmt.Errorf("unexpected id type %T", res.InsertedID)}
	}

	s.logger.Debug("inserted post", zap.String("id", oid.Hex()))
	return &domain.Post{ID: oid, Title: in.Title, Body: in.Body}, nil
}

// FindAll returns every post in the collection
func (s *Store) FindAll(ctx context.Context) ([]domain.Post, error) {
	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cur, err := coll.Find(opCtx, bson.D{})
	if err != nil {
		return nil, classify("find posts", err)
	}

	posts := make([]domain.Post, 0)
	if err := cur.All(opCtx, &posts); err != nil {
		return nil, classify("decode posts", err)
	}
	return posts, nil
}

// FindByID returns the post with the given id
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var post domain.Post
	if err := coll.FindOne(opCtx, bson.D{{Key: "_id", Value: oid}}).Decode(&post); err != nil {
		return nil, classify("find post", err)
	}
	return &post, nil
}

// Update replaces title and body of the post and returns the new version
func (s *Store) Update(ctx context.Context, id string, in domain.PostInput) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	update := bson.D{{Key: "$set", Value: postFields{Title: in.Title, Body: in.Body}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post domain.Post
	err = coll.FindOneAndUpdate(opCtx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&post)
	if err != nil {
		return nil, classify("update post", err)
	}
	return &post, nil
}

// Delete removes the post; a missing post is reported as domain.ErrNotFound
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}

	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := coll.DeleteOne(opCtx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify("delete post", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping verifies the store is reachable
func (s *Store) Ping(ctx context.Context) error {
	coll, opCtx, cancel, err := s.collection(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := coll.Database().Client().Ping(opCtx, readpref.Primary()); err != nil {
		return &domain.ConnectionError{Err: err}
	}
	return nil
}

// Close releases the underlying connection
func (s *Store) Close(ctx context.Context) error {
	return s.source.Disconnect(ctx)
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsNetworkError(err):
		return &domain.ConnectionError{Err: err}
	default:
		return &domain.StoreError{Op: op, Err: err}
	}
}

// fixedCollection serves a collection that was connected elsewhere
type fixedCollection struct {
	coll *mongo.Collection
}

// NewFixedSource wraps an already connected collection; Disconnect is a no-op
func NewFixedSource(coll *mongo.Collection) CollectionSource {
	return fixedCollection{coll: coll}
}

func (f fixedCollection) Connect(context.Context) (*mongo.Collection, error) {
	return f.coll, nil
}

func (f fixedCollection) Disconnect(context.Context) error {
	return nil
}
