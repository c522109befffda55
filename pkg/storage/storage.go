package storage

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

var errClosed = errors.New("embedded store is closed")

var _ domain.PostStore = (*Engine)(nil)

// Engine is an in-process post store with optional snapshot persistence.
// It implements domain.PostStore.
type Engine struct {
	mu     sync.RWMutex
	posts  map[primitive.ObjectID]domain.Post
	dirty  bool
	closed bool

	// Serializes snapshot writes so a background save and a transaction
	// save never race on the same file
	saveMu sync.Mutex

	// Configuration
	dataFile        string
	backgroundSave  bool
	transactionSave bool
	saveInterval    time.Duration
	logger          *zap.Logger

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewStorageEngine creates an engine without touching disk
func NewStorageEngine(options ...StorageOption) *Engine {
	engine := &Engine{
		posts:           make(map[primitive.ObjectID]domain.Post),
		transactionSave: true,
		saveInterval:    5 * time.Minute,
		logger:          zap.NewNop(),
		stopChan:        make(chan struct{}),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// Open creates an engine, loads the snapshot file if one exists and starts
// the background saver when configured
func Open(options ...StorageOption) (*Engine, error) {
	engine := NewStorageEngine(options...)

	if engine.dataFile != "" {
		if err := engine.LoadFromFile(engine.dataFile); err != nil {
			return nil, &domain.ConnectionError{Err: err}
		}
	}

	engine.StartBackgroundWorkers()
	return engine, nil
}

// Create inserts a new post with a freshly generated id
func (se *Engine) Create(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "insert post", Err: err}
	}

	se.mu.Lock()
	if se.closed {
		se.mu.Unlock()
		return nil, &domain.ConnectionError{Err: errClosed}
	}
	post := domain.Post{ID: primitive.NewObjectID(), Title: in.Title, Body: in.Body}
	se.posts[post.ID] = post
	se.dirty = true
	se.mu.Unlock()

	se.saveAfterTransaction()
	return &post, nil
}

// FindAll returns every post ordered by id, which is creation order
func (se *Engine) FindAll(ctx context.Context) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "find posts", Err: err}
	}

	se.mu.RLock()
	defer se.mu.RUnlock()
	if se.closed {
		return nil, &domain.ConnectionError{Err: errClosed}
	}

	posts := make([]domain.Post, 0, len(se.posts))
	for _, post := range se.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return bytes.Compare(posts[i].ID[:], posts[j].ID[:]) < 0
	})
	return posts, nil
}

// FindByID returns the post with the given id
func (se *Engine) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "find post", Err: err}
	}

	se.mu.RLock()
	defer se.mu.RUnlock()
	if se.closed {
		return nil, &domain.ConnectionError{Err: errClosed}
	}

	post, exists := se.posts[oid]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &post, nil
}

// Update replaces title and body of an existing post
func (se *Engine) Update(ctx context.Context, id string, in domain.PostInput) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "update post", Err: err}
	}

	se.mu.Lock()
	if se.closed {
		se.mu.Unlock()
		return nil, &domain.ConnectionError{Err: errClosed}
	}
	post, exists := se.posts[oid]
	if !exists {
		se.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	post.Title = in.Title
	post.Body = in.Body
	se.posts[oid] = post
	se.dirty = true
	se.mu.Unlock()

	se.saveAfterTransaction()
	return &post, nil
}

// Delete removes a post; deleting an unknown id returns domain.ErrNotFound
func (se *Engine) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "delete post", Err: err}
	}

	se.mu.Lock()
	if se.closed {
		se.mu.Unlock()
		return &domain.ConnectionError{Err: errClosed}
	}
	if _, exists := se.posts[oid]; !exists {
		se.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(se.posts, oid)
	se.dirty = true
	se.mu.Unlock()

	se.saveAfterTransaction()
	return nil
}

// Ping reports whether the engine still accepts requests
func (se *Engine) Ping(ctx context.Context) error {
	se.mu.RLock()
	defer se.mu.RUnlock()
	if se.closed {
		return &domain.ConnectionError{Err: errClosed}
	}
	return nil
}

// Close stops background workers and writes a final snapshot
func (se *Engine) Close(ctx context.Context) error {
	se.StopBackgroundWorkers()

	se.mu.Lock()
	if se.closed {
		se.mu.Unlock()
		return nil
	}
	se.closed = true
	se.mu.Unlock()

	if se.dataFile == "" {
		return nil
	}
	if err := se.SaveToFile(se.dataFile); err != nil {
		return &domain.StoreError{Op: "save snapshot", Err: err}
	}
	se.logger.Info("saved posts on close", zap.String("file", se.dataFile))
	return nil
}

// Count returns the number of stored posts
func (se *Engine) Count() int {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return len(se.posts)
}

// saveAfterTransaction persists the snapshot if transaction saves are enabled
func (se *Engine) saveAfterTransaction() {
	if !se.transactionSave || se.dataFile == "" {
		return
	}
	if err := se.saveIfDirty(); err != nil {
		// The write already succeeded in memory; the next save retries
		se.logger.Warn("failed to save posts after write",
			zap.String("file", se.dataFile), zap.Error(err))
	}
}
